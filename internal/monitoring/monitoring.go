// Package monitoring records per-stage timings and memory counters and
// renders them as structured log/slog events, the level of detail
// gated by the run's configured monitoring_level. Grounded in the
// teacher's cmd/server/main.go slog.NewJSONHandler setup, generalized
// from one-shot request logging to a per-stage timing recorder.
package monitoring

import (
	"log/slog"
	"runtime"
	"time"
)

// Level mirrors config.MonitoringLevel without importing internal/config,
// to keep this package dependency-free of the run-configuration layer.
type Level string

const (
	LevelBasic       Level = "basic"
	LevelDetailed    Level = "detailed"
	LevelDebug       Level = "debug"
	LevelPerformance Level = "performance"
)

// StageTiming records one stage's wall-clock duration and the process's
// heap usage observed at the end of the stage.
type StageTiming struct {
	Stage     string        `json:"stage"`
	Duration  time.Duration `json:"duration_ns"`
	HeapAlloc uint64        `json:"heap_alloc_bytes"`
}

// Recorder accumulates stage timings for the duration of one run and
// emits slog events as each stage completes.
type Recorder struct {
	logger  *slog.Logger
	level   Level
	timings []StageTiming

	warnMB, critMB int
}

// New returns a Recorder logging at level via logger. warnMB/critMB
// configure the memory-counter thresholds a StageDone call compares
// against, emitting a warning-level log entry when exceeded.
func New(logger *slog.Logger, level Level, warnMB, critMB int) *Recorder {
	return &Recorder{logger: logger, level: level, warnMB: warnMB, critMB: critMB}
}

// StageStart returns a func to call when the stage completes.
func (r *Recorder) StageStart(stage string) func() {
	start := time.Now()
	if r.level == LevelDebug || r.level == LevelPerformance {
		r.logger.Debug("stage starting", slog.String("stage", stage))
	}
	return func() {
		r.StageDone(stage, time.Since(start))
	}
}

// StageDone records a completed stage's duration and current heap usage,
// logging at a level appropriate to the configured monitoring level and
// the configured memory thresholds.
func (r *Recorder) StageDone(stage string, duration time.Duration) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	t := StageTiming{Stage: stage, Duration: duration, HeapAlloc: mem.HeapAlloc}
	r.timings = append(r.timings, t)

	heapMB := int(mem.HeapAlloc / (1024 * 1024))
	attrs := []any{slog.String("stage", stage), slog.Duration("duration", duration)}
	if r.level != LevelBasic {
		attrs = append(attrs, slog.Int("heap_mb", heapMB))
	}

	switch {
	case r.critMB > 0 && heapMB >= r.critMB:
		r.logger.Error("stage completed, memory critical", attrs...)
	case r.warnMB > 0 && heapMB >= r.warnMB:
		r.logger.Warn("stage completed, memory warning", attrs...)
	default:
		r.logger.Info("stage completed", attrs...)
	}
}

// Timings returns every recorded stage timing, in completion order.
func (r *Recorder) Timings() []StageTiming {
	return r.timings
}
