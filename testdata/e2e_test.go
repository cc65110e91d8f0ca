package testdata

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	cfgpkg "splitkit/internal/config"
	"splitkit/internal/engine"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

// baseConfig 构造写入 outDir 的最小可运行配置。
func baseConfig(input, outDir string) cfgpkg.Config {
	cfg := cfgpkg.Defaults()
	cfg.Input = input
	cfg.Prefix = "x"
	cfg.OutputDir = outDir
	cfg.Logging.Level = "error"
	return cfg
}

// splitFile 装配并执行一次拆分，按文件名顺序返回全部输出。
func splitFile(t *testing.T, cfg cfgpkg.Config) ([]string, [][]byte) {
	t.Helper()
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if err := engine.Run(context.Background(), comp, set, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	datas := make([][]byte, len(names))
	for i, n := range names {
		b, err := os.ReadFile(filepath.Join(cfg.OutputDir, n))
		if err != nil {
			t.Fatalf("read %s: %v", n, err)
		}
		datas[i] = b
	}
	return names, datas
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

// joinLines 将各输出按 "\n" 连接后拆回行序列。
func joinLines(datas [][]byte) []string {
	parts := make([]string, len(datas))
	for i, d := range datas {
		parts[i] = string(d)
	}
	return strings.Split(strings.Join(parts, "\n"), "\n")
}

// E2E-01: 行数拆分的黄金大小与行序列重建
func TestLineCountGolden(t *testing.T) {
	in := filepath.Join("files", "lines-1000.txt")
	cfg := baseConfig(in, t.TempDir())
	cfg.Split.LineCount = intp(546)
	names, datas := splitFile(t, cfg)
	if diff := cmp.Diff([]string{"xaa", "xab"}, names); diff != "" {
		t.Fatalf("文件名 (-want +got):\n%s", diff)
	}
	if len(datas[0]) != 5469 || len(datas[1]) != 4529 {
		t.Fatalf("大小 %d/%d, want 5469/4529", len(datas[0]), len(datas[1]))
	}
	if diff := cmp.Diff(readLines(t, in), joinLines(datas)); diff != "" {
		t.Fatalf("行序列无法重建 (-want +got):\n%s", diff)
	}
}

// E2E-02: 字节数与份数拆分按字节精确还原
func TestByteExactRoundTrip(t *testing.T) {
	in := filepath.Join("files", "lines-1000.txt")
	want, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]cfgpkg.Split{
		"bytes_1k":  {ByteCount: strp("1K")},
		"bytes_3k":  {ByteCount: strp("3k")},
		"bytes_1m":  {ByteCount: strp("1M")},
		"chunks_1":  {ChunkCount: intp(1)},
		"chunks_2":  {ChunkCount: intp(2)},
		"chunks_7":  {ChunkCount: intp(7)},
		"chunks_26": {ChunkCount: intp(26)},
	}
	for name, sp := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig(in, t.TempDir())
			cfg.Split = sp
			_, datas := splitFile(t, cfg)
			if got := bytes.Join(datas, nil); !bytes.Equal(got, want) {
				t.Fatalf("拼接结果与输入不一致: %d vs %d 字节", len(got), len(want))
			}
			if sp.ChunkCount != nil {
				if len(datas) != *sp.ChunkCount {
					t.Fatalf("份数 %d, want %d", len(datas), *sp.ChunkCount)
				}
				base := int64(len(want)) / int64(*sp.ChunkCount)
				for i := 0; i < len(datas)-1; i++ {
					if int64(len(datas[i])) != base {
						t.Fatalf("第 %d 份大小 %d, want %d", i+1, len(datas[i]), base)
					}
				}
			}
		})
	}
}

// E2E-03: 正则边界（两种引擎）
func TestPatternBoundaries(t *testing.T) {
	in := filepath.Join("files", "doc.md")
	for _, eng := range []string{"re2", "regexp2"} {
		t.Run(eng, func(t *testing.T) {
			cfg := baseConfig(in, t.TempDir())
			cfg.Split = cfgpkg.Split{Pattern: strp("^## "), Engine: eng}
			_, datas := splitFile(t, cfg)
			if len(datas) != 5 {
				t.Fatalf("应为 5 个文件, got %d", len(datas))
			}
			if !bytes.HasPrefix(datas[1], []byte("## install")) {
				t.Fatalf("边界行应开启新文件: %q", datas[1])
			}
			if diff := cmp.Diff(readLines(t, in), joinLines(datas)); diff != "" {
				t.Fatalf("行序列无法重建 (-want +got):\n%s", diff)
			}
		})
	}
}

// E2E-04: 环视仅 regexp2 支持；不匹配时输出完整输入
func TestPatternLookaroundAndNoMatch(t *testing.T) {
	in := filepath.Join("files", "doc.md")
	cfg := baseConfig(in, t.TempDir())
	cfg.Split = cfgpkg.Split{Pattern: strp(`^## (?!section)`), Engine: "regexp2"}
	_, datas := splitFile(t, cfg)
	if len(datas) != 4 {
		t.Fatalf("应为 4 个文件, got %d", len(datas))
	}

	cfg.Split.Engine = "re2"
	if _, _, err := cfgpkg.Assemble(cfg); err == nil {
		t.Fatalf("re2 不支持环视，应在装配期报错")
	}

	cfg = baseConfig(in, t.TempDir())
	cfg.Split = cfgpkg.Split{Pattern: strp("^NEVER$")}
	_, datas = splitFile(t, cfg)
	raw, _ := os.ReadFile(in)
	if len(datas) != 1 || string(datas[0]) != strings.TrimSuffix(string(raw), "\n") {
		t.Fatalf("不匹配时应输出完整输入")
	}
}

// E2E-05: 原子写、数字后缀与输出子目录
func TestWriterOptions(t *testing.T) {
	in := filepath.Join("files", "lines-1000.txt")
	out := t.TempDir()
	cfg := baseConfig(in, out)
	cfg.Prefix = "parts/p-"
	cfg.SuffixLength = 3
	numeric := true
	cfg.NumericSuffix = &numeric
	cfg.Split.LineCount = intp(399)
	cfg.Options.Writer = map[string]any{"atomic": true, "confine": true}
	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if err := engine.Run(context.Background(), comp, set, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(out, "parts"))
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"p-000", "p-001", "p-002"}, names); diff != "" {
		t.Fatalf("输出 (-want +got):\n%s", diff)
	}

	// confine 拒绝越界前缀
	cfg.Prefix = "../escape-"
	comp, set, _ = cfgpkg.Assemble(cfg)
	if err := engine.Run(context.Background(), comp, set, nil); err == nil {
		t.Fatalf("越界路径应失败")
	}
}
