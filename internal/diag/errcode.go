package diag

import (
	"context"
	"errors"
	"os"
	"time"

	"splitkit/pkg/contract"
)

// Code 是最小错误分类代码。
// 用于日志/指标汇总；退出码由 CLI 基于同一分类决定。
type Code string

const (
	CodeUnknown          Code = "unknown"
	CodeInvalidArgument  Code = "invalid_argument"
	CodeSourceUnreadable Code = "source_unreadable"
	CodeOutputWrite      Code = "output_write_failed"
	CodeCancel           Code = "cancel"
	CodeIO               Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrInvalidArgument) {
		return CodeInvalidArgument
	}
	if errors.Is(err, contract.ErrSourceUnreadable) {
		return CodeSourceUnreadable
	}
	// 写失败可能包裹 ErrPathInvalid，需先于路径判断
	if errors.Is(err, contract.ErrOutputWriteFailed) {
		return CodeOutputWrite
	}
	if errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvalidArgument
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// NowUTC 返回 RFC3339 UTC 时间字符串。
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }
