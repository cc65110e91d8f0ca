package contract

import "context"

// Emit: 将一段完整内容交给引擎写成下一个输出文件。
// data 的所有权在调用期间移交给引擎；Emit 返回后引擎不再持有，
// 调用方可复用其底层内存。
type Emit func(ctx context.Context, data []byte) error

// Splitter: 按某种方式把输入切成有序的输出块。
// 约束：
// 1) 顺序读取 src，单 goroutine，无内部并发；
// 2) 每个输出块恰好调用一次 emit，按输出顺序；
// 3) emit 返回错误时立即中止并原样上抛；
// 4) 字节类方式不丢失、不重复内容；行类方式按 '\n' 归一行尾。
type Splitter interface {
	Split(ctx context.Context, src *Source, emit Emit) error
}
