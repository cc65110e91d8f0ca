// Package engine 驱动单次拆分：Reader 打开源 → Splitter 产出块 → 命名 → Writer 写出。
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"splitkit/internal/diag"
	"splitkit/pkg/contract"
	"splitkit/pkg/suffix"
)

// - 单 goroutine、同步 I/O；源只打开一次并顺序读取。
// - 输出序号从 1 开始，仅在实际写出时递增，运行内不复用。
// - 首个写错误即中止；此前已写出的文件保留，不回滚。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader   contract.Reader
	Splitter contract.Splitter
	Writer   contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// Input 为源路径，"-" 表示 STDIN。
	Input string
	// Method 仅用于日志与终端展示。
	Method contract.MethodKind
	// Namer 将输出序号映射为文件名。
	Namer suffix.Namer
}

// Run 执行一次拆分，返回首个错误。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) error {
	if err := sanity(comp, set); err != nil {
		return fmt.Errorf("sanity: %w", err)
	}
	term := diag.GetTerminal()
	t0 := time.Now()
	timer := logger.StartWith("engine", "split start", set.Input, map[string]string{"method": string(set.Method)})

	fail := func(fileID string, err error) error {
		code := diag.Classify(err)
		diag.IncError(code)
		logger.ErrorWith("engine", string(code), err.Error(), timer.Since(), fileID, nil)
		term.RunFinish(false, time.Since(t0))
		return err
	}

	src, err := comp.Reader.Open(ctx, set.Input)
	if err != nil {
		if !errors.Is(err, contract.ErrSourceUnreadable) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", contract.ErrSourceUnreadable, err)
		}
		return fail(set.Input, err)
	}
	defer src.Close()
	fileID := string(src.ID)
	term.RunStart(fileID, string(set.Method), src.Size)

	var index int
	emit := func(ctx context.Context, data []byte) error {
		index++
		name, err := set.Namer.Name(index)
		if err != nil {
			return fmt.Errorf("%w: output #%d: %w", contract.ErrOutputWriteFailed, index, err)
		}
		if err := comp.Writer.Write(ctx, name, bytes.NewReader(data)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s: %w", contract.ErrOutputWriteFailed, name, err)
		}
		size := int64(len(data))
		diag.IncChunk(size)
		logger.Chunk("engine", fileID, name, size)
		term.ChunkWritten(name, size)
		return nil
	}

	if err := comp.Splitter.Split(ctx, src, emit); err != nil {
		return fail(fileID, err)
	}

	dur := time.Since(t0)
	diag.ObserveDuration("split", dur.Milliseconds())
	timer.Finish("split done", int64(index), nil)
	term.RunFinish(true, dur)
	return nil
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Splitter == nil || c.Writer == nil {
		return fmt.Errorf("%w: engine: missing components", contract.ErrInvalidArgument)
	}
	if s.Input == "" {
		return fmt.Errorf("%w: engine: empty input", contract.ErrInvalidArgument)
	}
	if s.Namer.Length < suffix.MinLength || s.Namer.Length > suffix.MaxLength {
		return fmt.Errorf("%w: engine: suffix length %d out of range", contract.ErrInvalidArgument, s.Namer.Length)
	}
	return nil
}
