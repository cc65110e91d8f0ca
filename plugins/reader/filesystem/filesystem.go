package filesystem

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"splitkit/pkg/contract"
)

// Options 为 FileSystem Reader 的可选配置（最小必要）。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
}

// FileSystem 实现基于文件系统与 STDIN 的 Reader。
type FileSystem struct {
	bufSize int
	stdin   io.Reader
}

// New 创建 FileSystem Reader。
func New(opts *Options) *FileSystem {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	return &FileSystem{bufSize: b, stdin: os.Stdin}
}

// Open 打开单个输入源。"-" 表示 STDIN，大小未知（Size=-1）。
// 符号链接跟随到目标；目录与不存在的路径返回 ErrSourceUnreadable。
// FIFO、字符设备等非常规文件可读，但大小按未知处理。
func (r *FileSystem) Open(ctx context.Context, p string) (*contract.Source, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if p == "-" {
		// 统一缓冲策略：STDIN 也使用 bufio.Reader 封装
		return &contract.Source{
			ID:         contract.FileID("stdin"),
			Size:       -1,
			ReadCloser: newBufferedCloser(io.NopCloser(r.stdin), r.bufSize),
		}, nil
	}
	if p == "" {
		return nil, fmt.Errorf("%w: empty input path", contract.ErrSourceUnreadable)
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrSourceUnreadable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", contract.ErrSourceUnreadable, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrSourceUnreadable, err)
	}
	size := int64(-1)
	if info.Mode().IsRegular() {
		size = info.Size()
	}
	return &contract.Source{
		ID:         contract.NormalizeFileID(p),
		Size:       size,
		ReadCloser: newBufferedCloser(f, r.bufSize),
	}, nil
}

// bufferedCloser 将 bufio.Reader 与底层 Closer 组合为 ReadCloser。
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func newBufferedCloser(c io.ReadCloser, bufSize int) *bufferedCloser {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, bufSize), c: c}
}

func (b *bufferedCloser) Close() error { return b.c.Close() }
