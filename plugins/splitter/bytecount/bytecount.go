// Package bytecount 按固定字节数拆分。
package bytecount

import (
	"context"
	"errors"
	"fmt"
	"io"

	"splitkit/pkg/contract"
)

// Splitter 每满 n 字节输出一个文件，末尾不足部分单独成文件。
type Splitter struct {
	n int64
}

// New 创建字节数拆分器；n 必须 ≥ 1。
func New(n int64) (*Splitter, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: byte_count must be >= 1, got %d", contract.ErrInvalidArgument, n)
	}
	return &Splitter{n: n}, nil
}

func (s *Splitter) Split(ctx context.Context, src *contract.Source, emit contract.Emit) error {
	size := s.n
	// 已知大小时缓冲不超过源大小，避免 "1G" 拆小文件时的大分配
	if src.Size >= 0 && src.Size < size {
		size = src.Size
	}
	if size == 0 {
		return nil
	}
	buf := make([]byte, size)
	for {
		if err := ctxErr(ctx); err != nil {
			return err
		}
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if eerr := emit(ctx, buf[:n]); eerr != nil {
				return eerr
			}
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			return fmt.Errorf("%w: %w", contract.ErrSourceUnreadable, err)
		}
	}
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
