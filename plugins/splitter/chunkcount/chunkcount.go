// Package chunkcount 按文件大小均分为固定份数。
package chunkcount

import (
	"context"
	"errors"
	"fmt"
	"io"

	"splitkit/pkg/contract"
)

// Splitter 将已知大小的源切成 n 份。
type Splitter struct {
	n int
}

// New 创建份数拆分器；n 必须 ≥ 1。上限由文件名容量决定，在配置校验阶段检查。
func New(n int) (*Splitter, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: chunk_count must be >= 1, got %d", contract.ErrInvalidArgument, n)
	}
	return &Splitter{n: n}, nil
}

// Plan 返回每份基准长度 cs 与实际写出的份数 parts：前 parts-1 份各 cs 字节，最后一份承接余数。
// total < n 时前 n-1 份均为空，只剩最后一份（即全部内容），因此 parts 不超过 max(total,1)。
func Plan(total int64, n int) (cs, parts int64) {
	cs = total / int64(n)
	switch {
	case total == 0:
		return 0, 0
	case cs == 0:
		return 0, 1
	default:
		return cs, int64(n)
	}
}

// Split 要求 src.Size 已知（stdin 不支持）。长度为 0 的份不写出。
func (s *Splitter) Split(ctx context.Context, src *contract.Source, emit contract.Emit) error {
	if src.Size < 0 {
		return fmt.Errorf("%w: chunk split needs a sized source, %q has unknown size", contract.ErrInvalidArgument, src.ID)
	}
	cs, parts := Plan(src.Size, s.n)
	if parts == 0 {
		return nil
	}
	last := src.Size - cs*(parts-1)
	// 最后一份最大，按其分配一次缓冲
	buf := make([]byte, last)
	for i := int64(0); i < parts; i++ {
		if err := ctxErr(ctx); err != nil {
			return err
		}
		sz := cs
		if i == parts-1 {
			sz = last
		}
		chunk := buf[:sz]
		if _, err := io.ReadFull(src, chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: %q shrank while reading", contract.ErrSourceUnreadable, src.ID)
			}
			return fmt.Errorf("%w: %w", contract.ErrSourceUnreadable, err)
		}
		if err := emit(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
