package diag

import "sync"

// 进程内最小指标：
// - chunks_total / bytes_total：写出的输出文件数与字节数
// - error_total{code}
// - op_duration_ms{stage}：最近一次各阶段耗时

var metrics = struct {
	mu       sync.Mutex
	chunks   int64
	bytes    int64
	errors   map[Code]int64
	duration map[string]int64
}{errors: map[Code]int64{}, duration: map[string]int64{}}

// MetricsSnapshot 为某一时刻的指标拷贝。
type MetricsSnapshot struct {
	Chunks   int64
	Bytes    int64
	Errors   map[Code]int64
	Duration map[string]int64
}

// IncChunk 累加一个写出的输出文件。
func IncChunk(size int64) {
	metrics.mu.Lock()
	metrics.chunks++
	metrics.bytes += size
	metrics.mu.Unlock()
}

// IncError 按分类累加错误计数。
func IncError(code Code) {
	metrics.mu.Lock()
	metrics.errors[code]++
	metrics.mu.Unlock()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(stage string, durMS int64) {
	metrics.mu.Lock()
	metrics.duration[stage] = durMS
	metrics.mu.Unlock()
}

// Snapshot 返回当前指标的深拷贝。
func Snapshot() MetricsSnapshot {
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	s := MetricsSnapshot{
		Chunks:   metrics.chunks,
		Bytes:    metrics.bytes,
		Errors:   make(map[Code]int64, len(metrics.errors)),
		Duration: make(map[string]int64, len(metrics.duration)),
	}
	for k, v := range metrics.errors {
		s.Errors[k] = v
	}
	for k, v := range metrics.duration {
		s.Duration[k] = v
	}
	return s
}

// ResetMetrics 清零全部指标（每次运行开始时调用）。
func ResetMetrics() {
	metrics.mu.Lock()
	metrics.chunks, metrics.bytes = 0, 0
	metrics.errors = map[Code]int64{}
	metrics.duration = map[string]int64{}
	metrics.mu.Unlock()
}
