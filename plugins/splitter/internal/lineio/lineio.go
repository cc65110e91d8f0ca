// Package lineio 提供按行读取与行缓冲，供行类拆分器共用。
package lineio

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// Reader 逐行读取，去除行尾 "\n" 与紧邻的 "\r"。
// 末尾换行之后不产生空行；"a\nb" 与 "a\nb\n" 都得到两行。
type Reader struct {
	br *bufio.Reader
}

// BufSize: 行读取缓冲大小。
const BufSize = 64 << 10

// NewReader 包装 r；r 已是缓冲不小于 BufSize 的 *bufio.Reader 时直接复用。
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, BufSize)}
}

// Next 返回下一行；ok=false 表示已到 EOF。
func (r *Reader) Next() (line string, ok bool, err error) {
	s, err := r.br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, err
		}
		if s == "" {
			return "", false, nil
		}
	}
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, true, nil
}

// Buffer 累积待写出的行。
type Buffer struct {
	lines []string
}

func (b *Buffer) Push(line string) { b.lines = append(b.lines, line) }

func (b *Buffer) Len() int { return len(b.lines) }

// Take 以 "\n" 连接已缓冲的行（无尾随换行）并清空缓冲。
func (b *Buffer) Take() []byte {
	out := []byte(strings.Join(b.lines, "\n"))
	b.lines = b.lines[:0]
	return out
}

// CtxErr 非阻塞地检查 ctx 是否已取消。
func CtxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
