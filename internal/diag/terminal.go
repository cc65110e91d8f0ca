package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Terminal: 终端状态提示（非日志）。
// - 输出到提供的 io.Writer（默认 stderr）。
// - TTY: 单行 \r 覆盖；非 TTY: 每个输出文件一行。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	// 运行期最小状态
	input    string
	method   string
	total    int64 // 源大小，-1 未知
	files    int
	written  int64
	runStart time.Time

	// 输出控制
	lastLen   int
	lastFlush time.Time

	mu sync.Mutex
}

// 进程级终端（可选，全局设置后供 engine 旁路调用）。
var (
	termMu sync.RWMutex
	term   *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term }

// NewTerminal 构造终端提示器。enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if os.Getenv("CI") == "" {
		if f, ok := w.(*os.File); ok {
			fd := f.Fd()
			t.isTTY = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		}
	}
	return t
}

// RunStart: 记录输入、拆分方式与源大小（-1 表示未知）。
func (t *Terminal) RunStart(input, method string, total int64) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.input = shortenBase(input, 48)
	t.method = method
	t.total = total
	t.files = 0
	t.written = 0
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] %s | 方式=%s | 大小=%s", safe(t.input), method, sizeText(total)))
}

// ChunkWritten: 一个输出文件写出完成。TTY 下节流 100ms 刷新进度行。
func (t *Terminal) ChunkWritten(name string, size int64) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.files++
	t.written += size
	if !t.isTTY {
		t.println(fmt.Sprintf("[chunk] %s | %s", safe(name), humanize.Bytes(uint64(size))))
		return
	}
	now := time.Now()
	if now.Sub(t.lastFlush) < 100*time.Millisecond {
		return
	}
	t.lastFlush = now
	t.printInline(t.progressLine())
}

func (t *Terminal) progressLine() string {
	done := humanize.Bytes(uint64(t.written))
	if t.total > 0 {
		pct := float64(t.written) * 100 / float64(t.total)
		return fmt.Sprintf("[split] %s | 文件 %d | %s/%s (%.0f%%) | 用时 %s",
			safe(t.input), t.files, done, humanize.Bytes(uint64(t.total)), pct, formatSince(t.runStart))
	}
	return fmt.Sprintf("[split] %s | 文件 %d | %s | 用时 %s", safe(t.input), t.files, done, formatSince(t.runStart))
}

// RunFinish: 结束总览。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	// 先清掉可能的行尾
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	t.println(fmt.Sprintf("[%s] 文件 %d | 写出 %s | 总用时 %s", tag, t.files, humanize.Bytes(uint64(t.written)), formatDur(dur)))
}

// 内部输出工具
func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		// 写失败即禁用
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	// 清尾：若新行比旧短，填充空格覆盖
	pad := 0
	if l := visLen(s); t.lastLen > l {
		pad = t.lastLen - l
	}
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(s)
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = visLen(s)
}

func sizeText(n int64) string {
	if n < 0 {
		return "未知"
	}
	return humanize.Bytes(uint64(n))
}

// shortenBase: 取基名并按可见宽度截断（尾部省略号）。
func shortenBase(s string, max int) string {
	if max <= 0 {
		return ""
	}
	base := filepath.Base(strings.TrimSpace(s))
	if visLen(base) <= max {
		return base
	}
	rs := []rune(base)
	return string(rs[:max-1]) + "…"
}

func visLen(s string) int { return len([]rune(s)) }

func safe(s string) string {
	// 避免换行等控制字符污染终端
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatSince(t0 time.Time) string { return formatDur(time.Since(t0)) }

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms < 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	// 秒，保留 1 位小数
	return fmt.Sprintf("%.1fs", float64(d.Milliseconds())/1000.0)
}
