package config

// Config: 运行期只读配置（一次解析，运行期不变）。
// 键名 snake_case；JSON/TOML/YAML 三种格式共用同一结构，未知字段在解析期失败。
type Config struct {
	// Input 为源文件路径；"-" 表示 STDIN。
	Input  string `json:"input" toml:"input" yaml:"input"`
	Prefix string `json:"prefix" toml:"prefix" yaml:"prefix"`
	// SuffixLength: 后缀长度 2–13。
	SuffixLength int `json:"suffix_length" toml:"suffix_length" yaml:"suffix_length"`
	// NumericSuffix: nil 表示未设置，以便覆盖层显式写 false。
	NumericSuffix *bool `json:"numeric_suffix,omitempty" toml:"numeric_suffix,omitempty" yaml:"numeric_suffix,omitempty"`
	// OutputDir: fs Writer 的输出根目录，优先于 options.writer.output_dir。
	OutputDir string `json:"output_dir,omitempty" toml:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	Split   Split   `json:"split" toml:"split" yaml:"split"`
	Logging Logging `json:"logging" toml:"logging" yaml:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components" toml:"components" yaml:"components"`
	// 各组件 Options 子树，重新编码为 JSON 后交给工厂严格解析。
	Options Options `json:"options" toml:"options" yaml:"options"`
}

// Split: 拆分方式。四个方式字段互斥；均未设置时按行数（默认 1000）。
// 某一层只要设置了任一方式字段，就整体替换较低层的方式。
type Split struct {
	LineCount  *int    `json:"line_count,omitempty" toml:"line_count,omitempty" yaml:"line_count,omitempty"`
	ChunkCount *int    `json:"chunk_count,omitempty" toml:"chunk_count,omitempty" yaml:"chunk_count,omitempty"`
	ByteCount  *string `json:"byte_count,omitempty" toml:"byte_count,omitempty" yaml:"byte_count,omitempty"`
	Pattern    *string `json:"pattern,omitempty" toml:"pattern,omitempty" yaml:"pattern,omitempty"`
	// Engine: 正则引擎（re2 | regexp2），仅对 pattern 生效。
	Engine string `json:"pattern_engine,omitempty" toml:"pattern_engine,omitempty" yaml:"pattern_engine,omitempty"`
}

// Logging: 级别与日志目录；目录为空时不写日志。
type Logging struct {
	Level string `json:"level" toml:"level" yaml:"level"`
	Dir   string `json:"dir,omitempty" toml:"dir,omitempty" yaml:"dir,omitempty"`
}

// Components: 组件名选择（注册表中的实现名）。Splitter 由拆分方式决定，不在此选择。
type Components struct {
	Reader string `json:"reader" toml:"reader" yaml:"reader"`
	Writer string `json:"writer" toml:"writer" yaml:"writer"`
}

// Options: 各组件的原样 Options。
type Options struct {
	Reader   map[string]any `json:"reader,omitempty" toml:"reader,omitempty" yaml:"reader,omitempty"`
	Splitter map[string]any `json:"splitter,omitempty" toml:"splitter,omitempty" yaml:"splitter,omitempty"`
	Writer   map[string]any `json:"writer,omitempty" toml:"writer,omitempty" yaml:"writer,omitempty"`
}

// hasMethod 报告该层是否设置了任一方式字段。
func (s Split) hasMethod() bool {
	return s.LineCount != nil || s.ChunkCount != nil || s.ByteCount != nil || s.Pattern != nil
}
