package config

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"splitkit/pkg/contract"
	"splitkit/pkg/suffix"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }
func boolp(v bool) *bool    { return &v }

// UT-CFG-01: 三种格式解析出相同配置
func TestLoadFormats(t *testing.T) {
	want := Config{
		Input:         "data/app.log",
		Prefix:        "app-",
		SuffixLength:  3,
		NumericSuffix: boolp(true),
		Split:         Split{ByteCount: strp("100K")},
		Logging:       Logging{Level: "debug"},
		Components:    Components{Reader: "fs", Writer: "fs"},
		Options:       Options{Writer: map[string]any{"output_dir": "parts", "atomic": true}},
	}
	for _, name := range []string{"basic.toml", "basic.yaml", "basic.json"} {
		got, err := Load(filepath.Join("testdata", name))
		if err != nil {
			t.Fatalf("%s 加载失败: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s 映射错误 (-want +got):\n%s", name, diff)
		}
		if err := Validate(Merge(Defaults(), got)); err != nil {
			t.Fatalf("%s 校验失败: %v", name, err)
		}
	}
}

// UT-CFG-02: 未知字段与不支持的格式
func TestLoadUnknown(t *testing.T) {
	for _, name := range []string{"unknown.toml", "unknown.yaml"} {
		if _, err := Load(filepath.Join("testdata", name)); !errors.Is(err, contract.ErrInvalidArgument) {
			t.Fatalf("%s 应拒绝未知字段, got %v", name, err)
		}
	}
	if _, err := LoadJSON("", []byte(`{"unknown":1}`)); !errors.Is(err, contract.ErrInvalidArgument) {
		t.Fatalf("JSON 应拒绝未知字段, got %v", err)
	}
	if _, err := Load("cfg.ini"); !errors.Is(err, contract.ErrInvalidArgument) {
		t.Fatalf("不支持的格式应报错, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil || errors.Is(err, contract.ErrInvalidArgument) {
		t.Fatalf("缺失文件应为 I/O 错误, got %v", err)
	}
}

// UT-CFG-03: 空 YAML 视为空配置
func TestLoadEmptyYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.yaml")
	os.WriteFile(p, nil, 0o644)
	cfg, err := Load(p)
	if err != nil || cfg.Input != "" {
		t.Fatalf("空 YAML: %v %+v", err, cfg)
	}
}

// UT-CFG-04: ENV 覆盖
func TestEnvOverlay(t *testing.T) {
	env := []string{
		"SPLITKIT_INPUT=in.txt",
		"SPLITKIT_PREFIX=part-",
		"SPLITKIT_SUFFIX_LENGTH=4",
		"SPLITKIT_NUMERIC_SUFFIX=true",
		"SPLITKIT_CHUNK_COUNT=5",
		"SPLITKIT_LOG_DIR=logs",
		"SPLITKIT_WRITER_OPTIONS_JSON={\"atomic\":true}",
		"SPLITKIT_COMPONENTS_WRITER=dryrun",
		"SPLITKIT_LINE_COUNT=",
		"OTHER_INPUT=ignored",
	}
	over, err := EnvOverlay(env)
	if err != nil {
		t.Fatalf("EnvOverlay 错误: %v", err)
	}
	want := Config{
		Input:         "in.txt",
		Prefix:        "part-",
		SuffixLength:  4,
		NumericSuffix: boolp(true),
		Split:         Split{ChunkCount: intp(5)},
		Logging:       Logging{Dir: "logs"},
		Components:    Components{Writer: "dryrun"},
		Options:       Options{Writer: map[string]any{"atomic": true}},
	}
	if diff := cmp.Diff(want, over); diff != "" {
		t.Fatalf("覆盖结果不正确 (-want +got):\n%s", diff)
	}
}

// UT-CFG-05: ENV 非法取值
func TestEnvOverlayInvalid(t *testing.T) {
	for _, kv := range []string{
		"SPLITKIT_SUFFIX_LENGTH=two",
		"SPLITKIT_NUMERIC_SUFFIX=maybe",
		"SPLITKIT_LINE_COUNT=1e3",
		"SPLITKIT_WRITER_OPTIONS_JSON={bad",
	} {
		if _, err := EnvOverlay([]string{kv}); !errors.Is(err, contract.ErrInvalidArgument) {
			t.Fatalf("%s 应报错, got %v", kv, err)
		}
	}
}

// UT-CFG-06: 方式整体替换，标量空值不覆盖
func TestMergeMethodReplace(t *testing.T) {
	base := Defaults()
	base.Input = "a.txt"
	base.Split = Split{LineCount: intp(10), Engine: "regexp2"}
	over := Config{Split: Split{Pattern: strp("^#")}}
	got := Merge(base, over)
	if got.Split.LineCount != nil || got.Split.Pattern == nil || *got.Split.Pattern != "^#" {
		t.Fatalf("方式应整体替换: %+v", got.Split)
	}
	if got.Split.Engine != "regexp2" || got.Input != "a.txt" || got.Prefix != "x" {
		t.Fatalf("未设置字段不应被覆盖: %+v", got)
	}
	// 显式 false 覆盖 true
	base.NumericSuffix = boolp(true)
	if got := Merge(base, Config{NumericSuffix: boolp(false)}); *got.NumericSuffix {
		t.Fatalf("显式 false 应覆盖")
	}
	// 合并结果不与输入共享指针
	over2 := Config{Split: Split{ChunkCount: intp(3)}}
	got = Merge(base, over2)
	*over2.Split.ChunkCount = 99
	if *got.Split.ChunkCount != 3 {
		t.Fatalf("Merge 应复制指针值")
	}
}

// UT-CFG-07: 方式解析
func TestMethod(t *testing.T) {
	base := Defaults()
	base.Input = "a.txt"
	cases := []struct {
		split Split
		want  contract.Method
	}{
		{Split{}, contract.ByLineCount{N: DefaultLineCount}},
		{Split{LineCount: intp(546)}, contract.ByLineCount{N: 546}},
		{Split{ChunkCount: intp(676)}, contract.ByChunkCount{N: 676}},
		{Split{ByteCount: strp("1M")}, contract.ByByteCount{N: 1000000}},
		{Split{Pattern: strp("^## "), Engine: "regexp2"}, contract.ByPattern{Expr: "^## ", Engine: "regexp2"}},
	}
	for _, c := range cases {
		cfg := base
		cfg.Split = c.split
		got, err := Method(cfg)
		if err != nil {
			t.Fatalf("%+v: %v", c.split, err)
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
	}
}

// UT-CFG-08: 校验失败分支均为 ErrInvalidArgument
func TestValidateErrors(t *testing.T) {
	ok := Defaults()
	ok.Input = "a.txt"
	if err := Validate(ok); err != nil {
		t.Fatalf("合法配置失败: %v", err)
	}
	cases := map[string]func(*Config){
		"no input":          func(c *Config) { c.Input = "" },
		"empty prefix":      func(c *Config) { c.Prefix = "" },
		"suffix short":      func(c *Config) { c.SuffixLength = 1 },
		"suffix long":       func(c *Config) { c.SuffixLength = 14 },
		"conflict":          func(c *Config) { c.Split = Split{LineCount: intp(5), ByteCount: strp("1K")} },
		"line zero":         func(c *Config) { c.Split = Split{LineCount: intp(0)} },
		"chunk zero":        func(c *Config) { c.Split = Split{ChunkCount: intp(0)} },
		"chunk over alpha":  func(c *Config) { c.Split = Split{ChunkCount: intp(677)} },
		"chunk over digits": func(c *Config) { c.NumericSuffix = boolp(true); c.Split = Split{ChunkCount: intp(101)} },
		"chunk stdin":       func(c *Config) { c.Input = "-"; c.Split = Split{ChunkCount: intp(2)} },
		"byte bad unit":     func(c *Config) { c.Split = Split{ByteCount: strp("100")} },
		"byte zero":         func(c *Config) { c.Split = Split{ByteCount: strp("0K")} },
		"bad regex":         func(c *Config) { c.Split = Split{Pattern: strp("(")} },
		"bad engine":        func(c *Config) { c.Split = Split{Pattern: strp("x"), Engine: "pcre"} },
		"bad level":         func(c *Config) { c.Logging.Level = "verbose" },
		"bad reader":        func(c *Config) { c.Components.Reader = "s3" },
		"bad writer":        func(c *Config) { c.Components.Writer = "s3" },
	}
	for name, mut := range cases {
		cfg := ok
		mut(&cfg)
		if err := Validate(cfg); !errors.Is(err, contract.ErrInvalidArgument) {
			t.Fatalf("%s: 期望 ErrInvalidArgument, got %v", name, err)
		}
	}
	// 数字后缀长度 3 时 chunk_count 可到 1000
	big := ok
	big.SuffixLength = 3
	big.NumericSuffix = boolp(true)
	big.Split = Split{ChunkCount: intp(1000)}
	if err := Validate(big); err != nil {
		t.Fatalf("capacity 1000 应通过: %v", err)
	}
}

// UT-CFG-09: 装配：output_dir 注入 fs writer，命名规则传递
func TestAssemble(t *testing.T) {
	cfg := Defaults()
	cfg.Input = " in.txt "
	cfg.Prefix = "p-"
	cfg.SuffixLength = 4
	cfg.NumericSuffix = boolp(true)
	cfg.OutputDir = t.TempDir()
	cfg.Split = Split{Pattern: strp("^#")}
	cfg.Options.Splitter = map[string]any{"match_timeout_ms": 10}
	comp, set, err := Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if comp.Reader == nil || comp.Splitter == nil || comp.Writer == nil {
		t.Fatalf("组件缺失 %+v", comp)
	}
	want := suffix.Namer{Prefix: "p-", Length: 4, Numeric: true}
	if set.Input != "in.txt" || set.Method != contract.KindPattern || set.Namer != want {
		t.Fatalf("settings 错误 %+v", set)
	}
}

// UT-CFG-10: 装配：未知 options 字段归为参数错误
func TestAssembleBadOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Input = "in.txt"
	cfg.Options.Writer = map[string]any{"compress": true}
	if _, _, err := Assemble(cfg); !errors.Is(err, contract.ErrInvalidArgument) {
		t.Fatalf("期望 ErrInvalidArgument, got %v", err)
	}
	cfg = Defaults()
	cfg.Input = "in.txt"
	cfg.Options.Splitter = map[string]any{"match_timeout_ms": 10} // line_count 不接受选项
	if _, _, err := Assemble(cfg); !errors.Is(err, contract.ErrInvalidArgument) {
		t.Fatalf("期望 ErrInvalidArgument, got %v", err)
	}
	// dryrun 不接收 output_dir 注入
	cfg = Defaults()
	cfg.Input = "in.txt"
	cfg.OutputDir = "out"
	cfg.Components.Writer = "dryrun"
	if _, _, err := Assemble(cfg); err != nil {
		t.Fatalf("dryrun assemble: %v", err)
	}
}

// UT-CFG-11: 发现顺序
func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	env := map[string]string{}
	getenv := func(k string) string { return env[k] }
	if got := Discover("", getenv); got != "" {
		t.Fatalf("无文件时应为空, got %q", got)
	}
	os.WriteFile("splitkit.json", []byte("{}"), 0o644)
	os.WriteFile("splitkit.yaml", []byte(""), 0o644)
	if got := Discover("", getenv); got != "splitkit.yaml" {
		t.Fatalf("应优先 yaml, got %q", got)
	}
	env["SPLITKIT_CONFIG_FILE"] = "from-env.toml"
	if got := Discover("", getenv); got != "from-env.toml" {
		t.Fatalf("ENV 应优先, got %q", got)
	}
	if got := Discover("cli.json", getenv); got != "cli.json" {
		t.Fatalf("显式路径应优先, got %q", got)
	}
}

// UT-CFG-12: 模板可写出、可回读并通过校验；不覆盖
func TestWriteTemplate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "init")
	created, err := WriteTemplate(dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("应创建 2 个文件, got %v", created)
	}
	cfg, err := LoadTOML(filepath.Join(dir, TemplateName))
	if err != nil {
		t.Fatalf("模板回读失败: %v", err)
	}
	if diff := cmp.Diff(DefaultTemplateConfig().Split, cfg.Split); diff != "" {
		t.Fatalf("split 不一致 (-want +got):\n%s", diff)
	}
	if _, _, err := Assemble(Merge(Defaults(), cfg)); err != nil {
		t.Fatalf("模板装配失败: %v", err)
	}
	env, _ := os.ReadFile(filepath.Join(dir, DotEnvName))
	if !strings.Contains(string(env), "SPLITKIT_WRITER_OPTIONS_JSON=\n") {
		t.Fatalf(".env 模板缺少键: %s", env)
	}
	// 再次生成：配置已存在 → 报错
	if _, err := WriteTemplate(dir); !errors.Is(err, os.ErrExist) {
		t.Fatalf("期望 ErrExist, got %v", err)
	}
}

// UT-CFG-13: 已有 .env 时跳过
func TestWriteTemplateKeepsDotEnv(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, DotEnvName), []byte("KEEP=1\n"), 0o644)
	created, err := WriteTemplate(dir)
	if err != nil || len(created) != 1 {
		t.Fatalf("created=%v err=%v", created, err)
	}
	if b, _ := os.ReadFile(filepath.Join(dir, DotEnvName)); string(b) != "KEEP=1\n" {
		t.Fatalf(".env 被覆盖: %q", b)
	}
}

// UT-CFG-14: 数字后缀容量内的超大 chunk_count 可通过校验，拆分只写出一份
func TestAssembleHugeChunkCount(t *testing.T) {
	cfg := Defaults()
	cfg.Input = "in.bin"
	cfg.SuffixLength = suffix.MaxLength
	cfg.NumericSuffix = boolp(true)
	cfg.Split = Split{ChunkCount: intp(int(suffix.Capacity(suffix.MaxLength, true) / 10))}
	comp, _, err := Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	src := &contract.Source{ID: "in.bin", Size: 10, ReadCloser: io.NopCloser(strings.NewReader("0123456789"))}
	var got []string
	err = comp.Splitter.Split(context.Background(), src, func(_ context.Context, data []byte) error {
		got = append(got, string(data))
		return nil
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if diff := cmp.Diff([]string{"0123456789"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
