package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"splitkit/internal/engine"
	"splitkit/pkg/bytesize"
	"splitkit/pkg/contract"
	"splitkit/pkg/registry"
	"splitkit/pkg/suffix"
	"splitkit/plugins/splitter/pattern"
)

func invalid(format string, a ...any) error {
	return fmt.Errorf("%w: config: %s", contract.ErrInvalidArgument, fmt.Sprintf(format, a...))
}

// Validate 对全部边界做静态校验；任何文件 I/O 之前调用。
// 所有错误包装 ErrInvalidArgument。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Input) == "" {
		return invalid("input not set")
	}
	if cfg.Prefix == "" {
		return invalid("prefix cannot be empty")
	}
	if cfg.SuffixLength < suffix.MinLength || cfg.SuffixLength > suffix.MaxLength {
		return invalid("suffix_length must be in [%d,%d], got %d", suffix.MinLength, suffix.MaxLength, cfg.SuffixLength)
	}
	m, err := Method(cfg)
	if err != nil {
		return err
	}
	if m.Kind() == contract.KindChunkCount && strings.TrimSpace(cfg.Input) == "-" {
		return invalid("chunk_count needs a sized input, stdin is not supported")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return invalid("logging.level %q unknown", cfg.Logging.Level)
	}
	if name := effName(cfg.Components.Reader, Defaults().Components.Reader); registry.Reader[name] == nil {
		return invalid("reader %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, Defaults().Components.Writer); registry.Writer[name] == nil {
		return invalid("writer %q not registered", name)
	}
	return nil
}

// Method 将 Split 解析为互斥的拆分方式并校验取值。
func Method(cfg Config) (contract.Method, error) {
	sp := cfg.Split
	var set []string
	if sp.LineCount != nil {
		set = append(set, "line_count")
	}
	if sp.ChunkCount != nil {
		set = append(set, "chunk_count")
	}
	if sp.ByteCount != nil {
		set = append(set, "byte_count")
	}
	if sp.Pattern != nil {
		set = append(set, "pattern")
	}
	if len(set) > 1 {
		return nil, invalid("split methods are mutually exclusive, got %s", strings.Join(set, " + "))
	}

	switch {
	case sp.ChunkCount != nil:
		n := *sp.ChunkCount
		limit := suffix.Capacity(cfg.SuffixLength, numeric(cfg))
		if n < 1 || int64(n) > limit {
			return nil, invalid("chunk_count must be in [1,%d], got %d", limit, n)
		}
		return contract.ByChunkCount{N: n}, nil
	case sp.ByteCount != nil:
		n, err := bytesize.Parse(strings.TrimSpace(*sp.ByteCount))
		if err != nil {
			return nil, fmt.Errorf("%w: config: byte_count: %w", contract.ErrInvalidArgument, err)
		}
		if n < 1 {
			return nil, invalid("byte_count must be >= 1 byte, got %q", *sp.ByteCount)
		}
		return contract.ByByteCount{N: n}, nil
	case sp.Pattern != nil:
		// 仅编译校验；拆分器装配时再次编译
		if _, err := pattern.Compile(*sp.Pattern, sp.Engine, 0); err != nil {
			return nil, err
		}
		return contract.ByPattern{Expr: *sp.Pattern, Engine: sp.Engine}, nil
	default:
		n := DefaultLineCount
		if sp.LineCount != nil {
			n = *sp.LineCount
		}
		if n < 1 {
			return nil, invalid("line_count must be >= 1, got %d", n)
		}
		return contract.ByLineCount{N: n}, nil
	}
}

// Assemble 构造 engine 组件与运行设置。
// 严格 Options 解析在 registry（工厂）层进行；此处只负责编码为 JSON。
func Assemble(cfg Config) (engine.Components, engine.Settings, error) {
	if err := Validate(cfg); err != nil {
		return engine.Components{}, engine.Settings{}, err
	}
	m, err := Method(cfg)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}

	d := Defaults()
	rn := effName(cfg.Components.Reader, d.Components.Reader)
	wn := effName(cfg.Components.Writer, d.Components.Writer)

	wopts := cfg.Options.Writer
	if wn == "fs" && strings.TrimSpace(cfg.OutputDir) != "" {
		wopts = cloneMap(wopts)
		wopts["output_dir"] = cfg.OutputDir
	}

	rraw, err := encodeOptions("reader", cfg.Options.Reader)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}
	sraw, err := encodeOptions("splitter", cfg.Options.Splitter)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}
	wraw, err := encodeOptions("writer", wopts)
	if err != nil {
		return engine.Components{}, engine.Settings{}, err
	}

	r, err := registry.Reader[rn](rraw)
	if err != nil {
		return engine.Components{}, engine.Settings{}, optionsErr("reader", err)
	}
	s, err := registry.Splitter[m.Kind()](m, sraw)
	if err != nil {
		return engine.Components{}, engine.Settings{}, optionsErr("splitter", err)
	}
	w, err := registry.Writer[wn](wraw)
	if err != nil {
		return engine.Components{}, engine.Settings{}, optionsErr("writer", err)
	}

	comp := engine.Components{Reader: r, Splitter: s, Writer: w}
	set := engine.Settings{
		Input:  strings.TrimSpace(cfg.Input),
		Method: m.Kind(),
		Namer:  suffix.Namer{Prefix: cfg.Prefix, Length: cfg.SuffixLength, Numeric: numeric(cfg)},
	}
	return comp, set, nil
}

func encodeOptions(comp string, m map[string]any) (json.RawMessage, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: options.%s: %w", contract.ErrInvalidArgument, comp, err)
	}
	return b, nil
}

// 工厂错误（未知字段、非法取值）统一归为参数错误。
func optionsErr(comp string, err error) error {
	if errors.Is(err, contract.ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: options.%s: %w", contract.ErrInvalidArgument, comp, err)
}

func numeric(cfg Config) bool { return cfg.NumericSuffix != nil && *cfg.NumericSuffix }

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
