package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"splitkit/pkg/contract"
	"splitkit/pkg/suffix"
)

// EnvPrefix 为所有 ENV 覆盖键的前缀。
const EnvPrefix = "SPLITKIT_"

// DefaultLineCount: 未选择任何方式时的每文件行数。
const DefaultLineCount = 1000

// DiscoverNames: 未显式指定时在工作目录按序查找的配置文件名。
var DiscoverNames = []string{"splitkit.toml", "splitkit.yaml", "splitkit.yml", "splitkit.json"}

// Defaults 返回带有安全默认值的 Config 雏形。
// 注意：Input 不设默认（必须由文件/ENV/CLI 提供）。
func Defaults() Config {
	return Config{
		Prefix:       "x",
		SuffixLength: suffix.DefaultLength,
		Logging:      Logging{Level: "info"},
		Components: Components{
			Reader: "fs",
			Writer: "fs",
		},
	}
}

// Discover 决定配置文件路径：显式路径 > SPLITKIT_CONFIG_FILE > 工作目录下的默认文件名。
// 均不存在时返回空串。
func Discover(explicit string, getenv func(string) string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if getenv != nil {
		if p := strings.TrimSpace(getenv(EnvPrefix + "CONFIG_FILE")); p != "" {
			return p
		}
	}
	for _, name := range DiscoverNames {
		if st, err := os.Stat(name); err == nil && !st.IsDir() {
			return name
		}
	}
	return ""
}

// Load 按扩展名选择解析器（.json/.toml/.yaml/.yml）。
func Load(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path, nil)
	case ".toml":
		return LoadTOML(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", contract.ErrInvalidArgument, path)
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", contract.ErrInvalidArgument, path, err)
	}
	return cfg, nil
}

// LoadTOML 解析 TOML；存在未识别的键时失败。
func LoadTOML(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		var perr *os.PathError
		if errors.As(err, &perr) {
			return cfg, err
		}
		return cfg, fmt.Errorf("%w: %s: %w", contract.ErrInvalidArgument, path, err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: %s: unknown keys %s", contract.ErrInvalidArgument, path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadYAML 解析 YAML（KnownFields 严格模式）；空文件视为空配置。
func LoadYAML(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %w", contract.ErrInvalidArgument, path, err)
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 标量/字符串为“替换”，空值不覆盖；拆分方式整体替换；Options 按组件整体替换，不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if s := strings.TrimSpace(over.Input); s != "" {
		out.Input = s
	}
	if over.Prefix != "" {
		out.Prefix = over.Prefix
	}
	if over.SuffixLength != 0 {
		out.SuffixLength = over.SuffixLength
	}
	if over.NumericSuffix != nil {
		v := *over.NumericSuffix
		out.NumericSuffix = &v
	}
	if s := strings.TrimSpace(over.OutputDir); s != "" {
		out.OutputDir = s
	}

	// 拆分方式：整体替换
	if over.Split.hasMethod() {
		out.Split.LineCount = cloneInt(over.Split.LineCount)
		out.Split.ChunkCount = cloneInt(over.Split.ChunkCount)
		out.Split.ByteCount = cloneString(over.Split.ByteCount)
		out.Split.Pattern = cloneString(over.Split.Pattern)
	}
	if s := strings.TrimSpace(over.Split.Engine); s != "" {
		out.Split.Engine = s
	}

	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}

	// 组件名（空不覆盖）
	if over.Components.Reader != "" {
		out.Components.Reader = over.Components.Reader
	}
	if over.Components.Writer != "" {
		out.Components.Writer = over.Components.Writer
	}

	// Options（完整替换对应键）
	if over.Options.Reader != nil {
		out.Options.Reader = cloneMap(over.Options.Reader)
	}
	if over.Options.Splitter != nil {
		out.Options.Splitter = cloneMap(over.Options.Splitter)
	}
	if over.Options.Writer != nil {
		out.Options.Writer = cloneMap(over.Options.Writer)
	}
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 SPLITKIT_；空值视为未设置；集合之外的键忽略；数值/布尔/JSON 非法时报错。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[:eq]
		val := strings.TrimSpace(kv[eq+1:])
		if val == "" {
			continue
		}
		bad := func(err error) (Config, error) {
			return Config{}, fmt.Errorf("%w: %s: %w", contract.ErrInvalidArgument, key, err)
		}
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "INPUT":
			over.Input = val
		case "PREFIX":
			over.Prefix = val
		case "SUFFIX_LENGTH":
			v, err := atoi(val)
			if err != nil {
				return bad(err)
			}
			over.SuffixLength = v
		case "NUMERIC_SUFFIX":
			v, err := strconv.ParseBool(val)
			if err != nil {
				return bad(err)
			}
			over.NumericSuffix = &v
		case "LINE_COUNT":
			v, err := atoi(val)
			if err != nil {
				return bad(err)
			}
			over.Split.LineCount = &v
		case "CHUNK_COUNT":
			v, err := atoi(val)
			if err != nil {
				return bad(err)
			}
			over.Split.ChunkCount = &v
		case "BYTE_COUNT":
			over.Split.ByteCount = &val
		case "PATTERN":
			// 正则保留原样（含首尾空白）
			raw := kv[eq+1:]
			over.Split.Pattern = &raw
		case "PATTERN_ENGINE":
			over.Split.Engine = val
		case "OUTPUT_DIR":
			over.OutputDir = val
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "LOG_DIR":
			over.Logging.Dir = val
		case "COMPONENTS_READER":
			over.Components.Reader = val
		case "COMPONENTS_WRITER":
			over.Components.Writer = val
		case "READER_OPTIONS_JSON":
			m, err := parseOptionsJSON(val)
			if err != nil {
				return bad(err)
			}
			over.Options.Reader = m
		case "SPLITTER_OPTIONS_JSON":
			m, err := parseOptionsJSON(val)
			if err != nil {
				return bad(err)
			}
			over.Options.Splitter = m
		case "WRITER_OPTIONS_JSON":
			m, err := parseOptionsJSON(val)
			if err != nil {
				return bad(err)
			}
			over.Options.Writer = m
		default:
			// CONFIG_FILE 由 Discover 处理；其余键忽略
		}
	}
	return over, nil
}

func parseOptionsJSON(s string) (map[string]any, error) {
	m := map[string]any{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
