// Package pattern 以正则匹配行为分界拆分文本：匹配行开启新文件。
package pattern

import (
	"context"
	"fmt"
	"time"

	"splitkit/pkg/contract"
	"splitkit/plugins/splitter/internal/lineio"
)

// Options 为 pattern 拆分器的可选配置。
type Options struct {
	// MatchTimeoutMS: 仅对 regexp2 生效的单行匹配超时（毫秒）。0 表示不限。
	MatchTimeoutMS int `json:"match_timeout_ms"`
}

// Splitter 按分界行拆分。
type Splitter struct {
	m Matcher
}

// New 编译 m.Expr；表达式非法或引擎未知时返回 ErrInvalidArgument。
func New(m contract.ByPattern, opts *Options) (*Splitter, error) {
	var timeout time.Duration
	if opts != nil {
		if opts.MatchTimeoutMS < 0 {
			return nil, fmt.Errorf("%w: match_timeout_ms must be >= 0", contract.ErrInvalidArgument)
		}
		timeout = time.Duration(opts.MatchTimeoutMS) * time.Millisecond
	}
	mt, err := Compile(m.Expr, m.Engine, timeout)
	if err != nil {
		return nil, err
	}
	return &Splitter{m: mt}, nil
}

// Split 匹配行到来且缓冲非空时，先写出缓冲，再将匹配行放入新缓冲。
// 无匹配时整个输入（换行规范化后）成为单个文件。
func (s *Splitter) Split(ctx context.Context, src *contract.Source, emit contract.Emit) error {
	lr := lineio.NewReader(src)
	var buf lineio.Buffer
	for lineNo := 1; ; lineNo++ {
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
		hit, err := s.m.Match(line)
		if err != nil {
			// regexp2 超时：该行无法判定，按源不可处理归类
			return fmt.Errorf("%w: %s line %d: pattern match: %w", contract.ErrSourceUnreadable, src.ID, lineNo, err)
		}
		if hit && buf.Len() > 0 {
			if err := emit(ctx, buf.Take()); err != nil {
				return err
			}
		}
		buf.Push(line)
	}
	if buf.Len() > 0 {
		return emit(ctx, buf.Take())
	}
	return nil
}
