package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// TemplateName / DotEnvName: --init-config 生成的文件名。
const (
	TemplateName = "splitkit.toml"
	DotEnvName   = ".env"
)

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 默认输入为 STDIN（"-"），按 1000 行拆分，输出到 ./out；
// - 组件名采用仓库内置实现；
// - 选项给出安全中性默认值，确保键存在。
func DefaultTemplateConfig() Config {
	d := Defaults()
	lines := DefaultLineCount
	numeric := false
	cfg := Config{
		Input:         "-",
		Prefix:        d.Prefix,
		SuffixLength:  d.SuffixLength,
		NumericSuffix: &numeric,
		OutputDir:     "out",
		Split:         Split{LineCount: &lines, Engine: "re2"},
		Logging:       Logging{Level: "info"},
		Components:    d.Components,
	}
	cfg.Options.Reader = map[string]any{"buf_size": 65536}
	cfg.Options.Splitter = map[string]any{}
	cfg.Options.Writer = map[string]any{
		"atomic":    false,
		"flat":      false,
		"confine":   false,
		"perm_file": 0,
		"perm_dir":  0,
		"buf_size":  65536,
	}
	return cfg
}

const templateHeader = `# splitkit 配置模板（由 --init-config 生成）
# 优先级：CLI > ENV(.env) > 配置文件 > 默认值
#
# [split] 中以下方式四选一（互斥）：
#   line_count  = 1000          每文件行数
#   chunk_count = 4             按大小均分为 N 份（不支持 STDIN）
#   byte_count  = "100K"        每文件字节数，单位 K/M/G（十进制）
#   pattern     = "^## "        匹配行开启新文件；pattern_engine = "re2" | "regexp2"
#
# options.splitter 仅 pattern 支持 match_timeout_ms（regexp2）。
# components.writer = "dryrun" 时只打印计划输出，不写文件。

`

// EncodeTemplate 将模板编码为带注释头的 TOML。
func EncodeTemplate(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTemplate 在 dir 下生成 splitkit.toml 与 .env。
// splitkit.toml 已存在时返回 fs.ErrExist；.env 已存在时跳过。返回实际创建的文件。
func WriteTemplate(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	b, err := EncodeTemplate(DefaultTemplateConfig())
	if err != nil {
		return nil, err
	}
	var created []string
	cfgPath := filepath.Join(dir, TemplateName)
	if err := writeExclusive(cfgPath, b); err != nil {
		return nil, fmt.Errorf("%s: %w", cfgPath, err)
	}
	created = append(created, cfgPath)

	envPath := filepath.Join(dir, DotEnvName)
	switch err := writeExclusive(envPath, []byte(DotEnvTemplate())); {
	case err == nil:
		created = append(created, envPath)
	case errors.Is(err, fs.ErrExist):
		// 不覆盖，不合并
	default:
		return created, fmt.Errorf("%s: %w", envPath, err)
	}
	return created, nil
}

func writeExclusive(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// envKeys: ENV 覆盖支持的全部键（不含前缀），按模板分组顺序。
var envKeys = [][]string{
	{"CONFIG_FILE"},
	{"INPUT", "PREFIX", "SUFFIX_LENGTH", "NUMERIC_SUFFIX", "OUTPUT_DIR"},
	{"LINE_COUNT", "CHUNK_COUNT", "BYTE_COUNT", "PATTERN", "PATTERN_ENGINE"},
	{"LOG_LEVEL", "LOG_DIR"},
	{"COMPONENTS_READER", "COMPONENTS_WRITER", "READER_OPTIONS_JSON", "SPLITTER_OPTIONS_JSON", "WRITER_OPTIONS_JSON"},
}

// DotEnvTemplate 返回 .env 模板内容：全部键留空。
func DotEnvTemplate() string {
	var b strings.Builder
	b.WriteString("# splitkit .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 空值表示未设置；已存在的环境变量不会被覆盖。\n")
	for _, group := range envKeys {
		b.WriteString("\n")
		for _, k := range group {
			b.WriteString(EnvPrefix + k + "=\n")
		}
	}
	return b.String()
}
