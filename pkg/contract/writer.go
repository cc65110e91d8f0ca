package contract

import (
	"context"
	"io"
)

// Writer: 将一个输出块写成名为 name 的文件。
// 约束：
//  1. 每次调用新建/截断目标，一次写完，不追加；
//  2. 同步返回，不做重试/回滚；
//  3. ctx 取消需尽快返回。
type Writer interface {
	Write(ctx context.Context, name string, r io.Reader) error
}
