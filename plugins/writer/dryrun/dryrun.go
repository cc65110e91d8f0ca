// Package dryrun 提供只打印计划、不落盘的 Writer。
package dryrun

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"splitkit/pkg/contract"
)

// Options 为 dryrun Writer 的可选配置。
type Options struct {
	// Human: 以 "5.5 kB" 形式打印大小；默认打印精确字节数。
	Human bool `json:"human"`
}

// Writer 为每个计划输出打印一行 "name<TAB>size"。
type Writer struct {
	out   io.Writer
	human bool
}

// New 创建写向 STDOUT 的 dryrun Writer。
func New(opts *Options) *Writer { return NewTo(opts, os.Stdout) }

// NewTo 创建写向 out 的 dryrun Writer。
func NewTo(opts *Options, out io.Writer) *Writer {
	w := &Writer{out: out}
	if opts != nil {
		w.human = opts.Human
	}
	return w
}

var _ contract.Writer = (*Writer)(nil)

// Write 消费 r 以统计大小，不创建任何文件。
func (w *Writer) Write(ctx context.Context, name string, r io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	size := fmt.Sprintf("%d", n)
	if w.human {
		size = humanize.Bytes(uint64(n))
	}
	_, err = fmt.Fprintf(w.out, "%s\t%s\n", name, size)
	return err
}
