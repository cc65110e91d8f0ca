package contract

// FileID: 输入源的逻辑标识（规范化路径，跨平台一致）；STDIN 为 "stdin"。
type FileID string

// MethodKind: 拆分方式名称，同时作为 registry 中 Splitter 工厂的键。
type MethodKind string

const (
	KindLineCount  MethodKind = "lines"
	KindChunkCount MethodKind = "chunks"
	KindByteCount  MethodKind = "bytes"
	KindPattern    MethodKind = "pattern"
)

// Method: 互斥的拆分方式（标签联合）。
// 变体：ByLineCount / ByChunkCount / ByByteCount / ByPattern。
type Method interface {
	Kind() MethodKind
}

// ByLineCount: 每个输出文件按行数切分。
type ByLineCount struct{ N int }

// ByChunkCount: 按文件大小均分为 N 份。
type ByChunkCount struct{ N int }

// ByByteCount: 每个输出文件固定字节数。
type ByByteCount struct{ N int64 }

// ByPattern: 匹配行作为新输出文件的首行。
// Engine 为正则实现名（"re2" | "regexp2"），空表示默认。
type ByPattern struct {
	Expr   string
	Engine string
}

func (ByLineCount) Kind() MethodKind  { return KindLineCount }
func (ByChunkCount) Kind() MethodKind { return KindChunkCount }
func (ByByteCount) Kind() MethodKind  { return KindByteCount }
func (ByPattern) Kind() MethodKind    { return KindPattern }
