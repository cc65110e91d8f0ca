package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "splitkit/internal/config"
	"splitkit/internal/diag"
	"splitkit/internal/engine"
	"splitkit/pkg/contract"
)

// version 由构建时 -ldflags "-X main.version=..." 注入。
var version = "dev"

var engineRun = engine.Run

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cliFlags: 命令行旗标的原始取值；是否覆盖由 Changed 决定。
type cliFlags struct {
	lineCount     int
	chunkCount    int
	byteCount     string
	pattern       string
	suffixLength  int
	numericSuffix bool
	regexEngine   string
	outputDir     string
	dryRun        bool
	configPath    string
	initConfig    bool
	logLevel      string
	logDir        string
	status        bool
}

// run 执行一次命令，返回进程退出码：0 成功；3 参数/配置错误；1 运行期错误。
func run(args []string, stdout, stderr io.Writer) int {
	var (
		f       cliFlags
		started bool
	)
	cmd := &cobra.Command{
		Use:   "splitkit [flags] FILE [PREFIX]",
		Short: "将文件按行数、份数、字节数或正则边界拆分为多个输出文件",
		Long: `splitkit 将 FILE（"-" 表示 STDIN）拆分为 PREFIXaa、PREFIXab ... 等输出文件。
四种拆分方式互斥：-l 行数（默认 1000）、-n 份数、-b 字节数（K/M/G）、-p 正则边界。

生成配置模板：splitkit --init-config [DIR]`,
		Version:       version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			started = true
			return execute(cmd, args, &f, stdout, stderr)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fl := cmd.Flags()
	fl.IntVarP(&f.lineCount, "line-count", "l", cfgpkg.DefaultLineCount, "每个输出文件的行数")
	fl.IntVarP(&f.chunkCount, "chunk-count", "n", 0, "按大小均分为 N 个输出文件（不支持 STDIN）")
	fl.StringVarP(&f.byteCount, "byte-count", "b", "", "每个输出文件的字节数，如 100K/1M/1G（十进制）")
	fl.StringVarP(&f.pattern, "pattern", "p", "", "匹配该正则的行开启新的输出文件")
	cmd.MarkFlagsMutuallyExclusive("line-count", "chunk-count", "byte-count", "pattern")
	fl.IntVarP(&f.suffixLength, "suffix-length", "a", 2, "后缀长度（2-13）")
	fl.BoolVarP(&f.numericSuffix, "numeric-suffix", "d", false, "使用数字后缀（00, 01, ...）")
	fl.StringVar(&f.regexEngine, "regex-engine", "re2", "正则引擎：re2 | regexp2（支持环视）")
	fl.StringVar(&f.outputDir, "output-dir", "", "输出目录（默认当前目录）")
	fl.BoolVar(&f.dryRun, "dry-run", false, "仅打印计划输出（名称与大小），不写文件")
	fl.StringVar(&f.configPath, "config", "", "配置文件路径（.toml/.yaml/.yml/.json）")
	fl.BoolVar(&f.initConfig, "init-config", false, "在目录 DIR（首个位置参数，缺省为当前目录）生成 splitkit.toml 与 .env 模板（不覆盖）")
	fl.StringVar(&f.logLevel, "log-level", "", "日志级别：debug | info | warn | error")
	fl.StringVar(&f.logDir, "log-dir", "", "日志目录；为空时不写日志")
	fl.BoolVar(&f.status, "status", false, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 每个文件一行")

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	if !started {
		// 旗标解析、互斥、参数个数错误
		err = fmt.Errorf("%w: %w", contract.ErrInvalidArgument, err)
	}
	if errors.Is(err, context.Canceled) {
		return 1
	}
	fmt.Fprintf(stderr, "splitkit: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	if diag.Classify(err) == diag.CodeInvalidArgument {
		return 3
	}
	return 1
}

func execute(cmd *cobra.Command, args []string, f *cliFlags, stdout, stderr io.Writer) error {
	start := time.Now()
	if f.initConfig {
		// --init-config [DIR]：目录取自位置参数
		dir := "."
		if len(args) > 0 {
			dir = strings.TrimSpace(args[0])
		}
		return initConfig(dir, stdout)
	}

	// 在读取任何 ENV 之前加载工作目录下的 .env（不覆盖已有 ENV）
	if err := godotenv.Load(cfgpkg.DotEnvName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", contract.ErrInvalidArgument, cfgpkg.DotEnvName, err)
	}

	cfg, err := loadConfig(cmd, args, f)
	if err != nil {
		return err
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		return err
	}

	logger := diag.NewLogger(uuid.NewString(), cfg.Logging.Level, cfg.Logging.Dir)
	defer logger.Close()
	diag.ResetMetrics()

	if err := preflightCheckOutputDir(cfg); err != nil {
		logger.Error("main", string(diag.CodeOutputWrite), err.Error(), &start)
		return fmt.Errorf("%w: output dir: %w", contract.ErrOutputWriteFailed, err)
	}

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		logger.Error("main", string(diag.Classify(err)), err.Error(), &start)
		return err
	}
	logger.StartWith("config", "effective", set.Input, map[string]string{
		"method":        string(set.Method),
		"prefix":        set.Namer.Prefix,
		"suffix_length": fmt.Sprintf("%d", set.Namer.Length),
		"reader":        cfg.Components.Reader,
		"writer":        cfg.Components.Writer,
	})

	term := diag.NewTerminal(stderr, f.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := engineRun(ctx, comp, set, logger); err != nil {
		return err
	}
	snap := diag.Snapshot()
	logger.InfoFinish("main", "run finished", start, snap.Chunks)
	return nil
}

// loadConfig 合并各层：默认值 → 配置文件 → ENV → CLI。
func loadConfig(cmd *cobra.Command, args []string, f *cliFlags) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()
	if path := cfgpkg.Discover(f.configPath, os.Getenv); path != "" {
		base, err := cfgpkg.Load(path)
		if err != nil {
			if errors.Is(err, contract.ErrInvalidArgument) {
				return cfg, err
			}
			return cfg, fmt.Errorf("%w: config: %w", contract.ErrInvalidArgument, err)
		}
		cfg = cfgpkg.Merge(cfg, base)
	}
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		return cfg, err
	}
	cfg = cfgpkg.Merge(cfg, overEnv)
	overCLI, err := cliOverlay(cmd.Flags(), args, f)
	if err != nil {
		return cfg, err
	}
	return cfgpkg.Merge(cfg, overCLI), nil
}

// cliOverlay 仅采纳显式给出的旗标与位置参数。
// Merge 会忽略空值，显式给出的空 FILE/PREFIX 在此拒绝。
func cliOverlay(fl *pflag.FlagSet, args []string, f *cliFlags) (cfgpkg.Config, error) {
	var over cfgpkg.Config
	changed := fl.Changed
	if len(args) > 0 {
		if strings.TrimSpace(args[0]) == "" {
			return over, fmt.Errorf("%w: FILE cannot be empty", contract.ErrInvalidArgument)
		}
		over.Input = args[0]
	}
	if len(args) > 1 {
		if args[1] == "" {
			return over, fmt.Errorf("%w: PREFIX cannot be empty", contract.ErrInvalidArgument)
		}
		over.Prefix = args[1]
	}
	if changed("line-count") {
		v := f.lineCount
		over.Split.LineCount = &v
	}
	if changed("chunk-count") {
		v := f.chunkCount
		over.Split.ChunkCount = &v
	}
	if changed("byte-count") {
		v := f.byteCount
		over.Split.ByteCount = &v
	}
	if changed("pattern") {
		v := f.pattern
		over.Split.Pattern = &v
	}
	if changed("regex-engine") {
		over.Split.Engine = f.regexEngine
	}
	if changed("suffix-length") {
		over.SuffixLength = f.suffixLength
	}
	if changed("numeric-suffix") {
		v := f.numericSuffix
		over.NumericSuffix = &v
	}
	if changed("output-dir") {
		over.OutputDir = f.outputDir
	}
	if changed("dry-run") && f.dryRun {
		over.Components.Writer = "dryrun"
	}
	if changed("log-level") {
		over.Logging.Level = f.logLevel
	}
	if changed("log-dir") {
		over.Logging.Dir = f.logDir
	}
	return over, nil
}

func initConfig(dir string, stdout io.Writer) error {
	if dir == "" {
		dir = "."
	}
	created, err := cfgpkg.WriteTemplate(dir)
	if err != nil {
		return fmt.Errorf("%w: init-config: %w", contract.ErrInvalidArgument, err)
	}
	for _, p := range created {
		fmt.Fprintf(stdout, "已生成 %s\n", p)
	}
	return nil
}

// preflightCheckOutputDir: fs Writer 启动前检查输出目录可写性。
// - 目录已存在：创建并删除临时文件；
// - 目录不存在：在父目录创建并删除临时目录；
// 其他 writer 跳过。
func preflightCheckOutputDir(cfg cfgpkg.Config) error {
	writerName := strings.TrimSpace(cfg.Components.Writer)
	if writerName == "" {
		writerName = cfgpkg.Defaults().Components.Writer
	}
	if writerName != "fs" {
		return nil
	}
	dir := strings.TrimSpace(cfg.OutputDir)
	if dir == "" {
		if s, ok := cfg.Options.Writer["output_dir"].(string); ok {
			dir = strings.TrimSpace(s)
		}
	}
	if dir == "" {
		dir = "."
	}
	if st, err := os.Stat(dir); err == nil && st.IsDir() {
		f, err := os.CreateTemp(dir, ".wcheck-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		return nil
	} else if err == nil && !st.IsDir() {
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	} else if !os.IsNotExist(err) {
		return err
	}
	// 目录不存在：向上找到首个已存在的祖先并检查可写
	parent := filepath.Dir(filepath.Clean(dir))
	for {
		st, err := os.Stat(parent)
		if err == nil {
			if !st.IsDir() {
				return fmt.Errorf("父路径不是目录: %s", parent)
			}
			break
		}
		if !os.IsNotExist(err) {
			return err
		}
		next := filepath.Dir(parent)
		if next == parent {
			return fmt.Errorf("无法确定父目录: %s", dir)
		}
		parent = next
	}
	tmpd, err := os.MkdirTemp(parent, ".wcheck-*")
	if err != nil {
		return err
	}
	_ = os.RemoveAll(tmpd)
	return nil
}
