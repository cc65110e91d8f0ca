// Package linecount 按固定行数拆分文本。
package linecount

import (
	"context"
	"fmt"

	"splitkit/pkg/contract"
	"splitkit/plugins/splitter/internal/lineio"
)

// Splitter 每累计到 n 行输出一个文件。
type Splitter struct {
	n int
}

// New 创建行数拆分器；n 必须 ≥ 1。
func New(n int) (*Splitter, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: line_count must be >= 1, got %d", contract.ErrInvalidArgument, n)
	}
	return &Splitter{n: n}, nil
}

// Split 读取整行后追加到缓冲；全局行号 i>0 且 i%n==0 时写出。
// 因此首个文件包含 n+1 行，其后每个文件 n 行，余数在 EOF 写出。
func (s *Splitter) Split(ctx context.Context, src *contract.Source, emit contract.Emit) error {
	lr := lineio.NewReader(src)
	var buf lineio.Buffer
	for i := 0; ; i++ {
		if err := lineio.CtxErr(ctx); err != nil {
			return err
		}
		line, ok, err := lr.Next()
		if err != nil {
			return fmt.Errorf("%w: %w", contract.ErrSourceUnreadable, err)
		}
		if !ok {
			break
		}
		buf.Push(line)
		if i > 0 && i%s.n == 0 {
			if err := emit(ctx, buf.Take()); err != nil {
				return err
			}
		}
	}
	if buf.Len() > 0 {
		return emit(ctx, buf.Take())
	}
	return nil
}
