package contract

import (
	"context"
	"io"
)

// Source: 已打开的输入源。
// Size 为总字节数；未知（如 STDIN）时为 -1。
type Source struct {
	ID   FileID
	Size int64
	io.ReadCloser
}

// Reader: 输入源抽象（单文件或 STDIN）。
// 约束：
// 1) 只打开一次，顺序读取；
// 2) 打不开/不可读返回包裹 ErrSourceUnreadable 的错误，不重试；
// 3) 不做解码，仅提供字节流。
type Reader interface {
	Open(ctx context.Context, path string) (*Source, error)
}
