package diag

import (
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 为结构化事件日志器：单行 JSON，字段固定（corr_id/comp/stage/code/dur_ms/count/file_id/chunk/kv）。
// 底层为 zap；nil *Logger 上的所有方法均为 no-op。
type Logger struct {
	z    *zap.Logger
	sink io.Closer
}

// NewLogger 按 level 初始化；dir 为空时关闭日志，否则写入 dir 下 10MiB 轮转文件。
func NewLogger(corrID, level, dir string) *Logger {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return &Logger{z: zap.NewNop()}
	}
	sink := NewRotatingFile(dir, 10*1024*1024)
	l := newLogger(corrID, level, sink)
	l.sink = sink
	return l
}

// NewLoggerTo 将日志写入任意 io.Writer（测试或 stderr 调试）。
func NewLoggerTo(corrID, level string, w io.Writer) *Logger {
	return newLogger(corrID, level, zapcore.AddSync(w))
}

func newLogger(corrID, level string, ws zapcore.WriteSyncer) *Logger {
	enc := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcRFC3339,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, parseLevel(level))
	return &Logger{z: zap.New(core).With(zap.String("corr_id", corrID))}
}

func utcRFC3339(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
	pae.AppendString(t.UTC().Format(time.RFC3339))
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Close 刷新缓冲并关闭文件 sink。
func (l *Logger) Close() error {
	if l == nil || l.z == nil {
		return nil
	}
	_ = l.z.Sync()
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}

// Event 为标准事件字段。
type Event struct {
	Comp   string
	Stage  string // start|finish|error|chunk
	Code   string
	DurMS  int64
	Count  int64
	FileID string
	Chunk  string
	KV     map[string]string
}

func (l *Logger) log(lv zapcore.Level, msg string, ev Event) {
	if l == nil || l.z == nil {
		return
	}
	ce := l.z.Check(lv, msg)
	if ce == nil {
		return
	}
	fields := make([]zap.Field, 0, 8)
	fields = append(fields, zap.String("comp", ev.Comp), zap.String("stage", ev.Stage))
	if ev.Code != "" {
		fields = append(fields, zap.String("code", ev.Code))
	}
	if ev.DurMS != 0 {
		fields = append(fields, zap.Int64("dur_ms", ev.DurMS))
	}
	if ev.Count != 0 {
		fields = append(fields, zap.Int64("count", ev.Count))
	}
	if ev.FileID != "" {
		fields = append(fields, zap.String("file_id", ev.FileID))
	}
	if ev.Chunk != "" {
		fields = append(fields, zap.String("chunk", ev.Chunk))
	}
	if len(ev.KV) > 0 {
		fields = append(fields, zap.Any("kv", ev.KV))
	}
	ce.Write(fields...)
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.log(zapcore.InfoLevel, msg, Event{Comp: comp, Stage: "start"})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWith 记录带 file_id 与键值的 start。
func (l *Logger) StartWith(comp, msg, fileID string, kv map[string]string) *Timer {
	l.log(zapcore.InfoLevel, msg, Event{Comp: comp, Stage: "start", FileID: fileID, KV: kv})
	return &Timer{l: l, comp: comp, fileID: fileID, t0: time.Now()}
}

// Chunk 记录单个输出文件写出（debug 级）。
func (l *Logger) Chunk(comp, fileID, chunk string, size int64) {
	l.log(zapcore.DebugLevel, "chunk written", Event{Comp: comp, Stage: "chunk", FileID: fileID, Chunk: chunk, Count: size})
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWith(comp, code, msg, durSince, "", nil)
}

// ErrorWith 支持 file_id 与键值对。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, fileID string, kv map[string]string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(zapcore.ErrorLevel, msg, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, FileID: fileID, KV: kv})
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.log(zapcore.InfoLevel, msg, Event{Comp: comp, Stage: "finish", DurMS: time.Since(start).Milliseconds(), Count: count})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l      *Logger
	comp   string
	fileID string
	t0     time.Time
}

// Finish 记录 finish；可选 count 与键值。
func (t *Timer) Finish(msg string, count int64, kv map[string]string) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(zapcore.InfoLevel, msg, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, FileID: t.fileID, KV: kv})
}

// Since 返回计时起点，供 Error 计算耗时。
func (t *Timer) Since() *time.Time {
	if t == nil {
		return nil
	}
	return &t.t0
}
