// Package profiler collects stage timings and per-row latencies of enhancement
// runs. A *Profiler satisfies ppahe.Recorder.
package profiler

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/rs/zerolog"
)

// Row latencies are tracked in microseconds between 1µs and one minute.
const (
	minRowMicros   = 1
	maxRowMicros   = int64(time.Minute / time.Microsecond)
	rowSignificant = 3
)

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

func (t *TimeTracker) record(d time.Duration) {
	if t.count == 0 || d < t.minTime {
		t.minTime = d
	}
	if d > t.maxTime {
		t.maxTime = d
	}
	t.totalTime += d
	t.count++
}

// Profiler accumulates timings across one or more Enhance calls. It is safe for
// concurrent use.
type Profiler struct {
	mu        sync.Mutex
	startTime time.Time
	stages    map[string]*TimeTracker
	order     []string
	rows      *hdrhistogram.Histogram
	memStats  runtime.MemStats
}

// New creates an empty profiler.
//
// Returns:
// - A Profiler ready to be passed to ppahe.WithRecorder.
func New() *Profiler {
	return &Profiler{
		startTime: time.Now(),
		stages:    make(map[string]*TimeTracker),
		rows:      hdrhistogram.New(minRowMicros, maxRowMicros, rowSignificant),
	}
}

// RecordStage records the duration of one pipeline stage.
func (p *Profiler) RecordStage(stage string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.stages[stage]
	if !exists {
		tracker = &TimeTracker{name: stage}
		p.stages[stage] = tracker
		p.order = append(p.order, stage)
	}
	tracker.record(d)
}

// RecordRow records the time spent equalizing one output row.
func (p *Profiler) RecordRow(d time.Duration) {
	v := min(max(d.Microseconds(), minRowMicros), maxRowMicros)

	p.mu.Lock()
	defer p.mu.Unlock()
	// v is clamped into the trackable range, so RecordValue cannot fail.
	_ = p.rows.RecordValue(v)
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.RecordStage(name, time.Since(start))
	}
}

// StageTiming summarizes the recorded durations of one stage.
type StageTiming struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
}

// RowLatency summarizes the per-row latency distribution.
type RowLatency struct {
	Count int64         `json:"count"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P90   time.Duration `json:"p90"`
	P99   time.Duration `json:"p99"`
	Max   time.Duration `json:"max"`
}

// Report is a snapshot of everything recorded so far.
type Report struct {
	Uptime     time.Duration `json:"uptime"`
	Stages     []StageTiming `json:"stages"`
	Rows       RowLatency    `json:"rows"`
	HeapAlloc  uint64        `json:"heap_alloc"`
	TotalAlloc uint64        `json:"total_alloc"`
	NumGC      uint32        `json:"num_gc"`
}

// Report returns the current statistics. Stages are listed in the order they
// were first recorded.
func (p *Profiler) Report() Report {
	p.mu.Lock()
	defer p.mu.Unlock()

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		Uptime:     time.Since(p.startTime),
		Stages:     make([]StageTiming, 0, len(p.order)),
		HeapAlloc:  p.memStats.HeapAlloc,
		TotalAlloc: p.memStats.TotalAlloc,
		NumGC:      p.memStats.NumGC,
	}

	for _, name := range p.order {
		t := p.stages[name]
		r.Stages = append(r.Stages, StageTiming{
			Name:  name,
			Count: t.count,
			Total: t.totalTime,
			Min:   t.minTime,
			Max:   t.maxTime,
			Avg:   t.totalTime / time.Duration(t.count),
		})
	}

	if n := p.rows.TotalCount(); n > 0 {
		r.Rows = RowLatency{
			Count: n,
			Mean:  micros(int64(p.rows.Mean())),
			P50:   micros(p.rows.ValueAtQuantile(50)),
			P90:   micros(p.rows.ValueAtQuantile(90)),
			P99:   micros(p.rows.ValueAtQuantile(99)),
			Max:   micros(p.rows.Max()),
		}
	}
	return r
}

// Log emits the report through logger, one event per stage plus one for rows.
func (p *Profiler) Log(logger zerolog.Logger) {
	r := p.Report()
	for _, s := range r.Stages {
		logger.Info().
			Str("stage", s.Name).
			Int64("count", s.Count).
			Dur("total", s.Total).
			Dur("avg", s.Avg).
			Dur("min", s.Min).
			Dur("max", s.Max).
			Msg("stage timing")
	}
	logger.Info().
		Int64("rows", r.Rows.Count).
		Dur("p50", r.Rows.P50).
		Dur("p90", r.Rows.P90).
		Dur("p99", r.Rows.P99).
		Dur("max", r.Rows.Max).
		Str("heap_alloc", formatBytes(r.HeapAlloc)).
		Uint32("gc_cycles", r.NumGC).
		Msg("row latency")
}

// WriteReport prints a human-readable report to w.
func (p *Profiler) WriteReport(w io.Writer) {
	r := p.Report()

	fmt.Fprintf(w, "PROFILER REPORT - %s\n", time.Now().Format("15:04:05.000"))
	fmt.Fprintf(w, "Uptime: %v\n", r.Uptime.Truncate(time.Millisecond))

	if len(r.Stages) > 0 {
		fmt.Fprintf(w, "\nSTAGE TIMINGS:\n")
		stages := append([]StageTiming(nil), r.Stages...)
		sort.SliceStable(stages, func(i, j int) bool { return stages[i].Total > stages[j].Total })
		for _, s := range stages {
			fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
				s.Name, s.Avg.Truncate(time.Microsecond),
				s.Min.Truncate(time.Microsecond),
				s.Max.Truncate(time.Microsecond),
				s.Count)
		}
	}

	if r.Rows.Count > 0 {
		fmt.Fprintf(w, "\nROW LATENCY:\n")
		fmt.Fprintf(w, "  rows=%d, mean=%v, p50=%v, p90=%v, p99=%v, max=%v\n",
			r.Rows.Count, r.Rows.Mean, r.Rows.P50, r.Rows.P90, r.Rows.P99, r.Rows.Max)
	}

	fmt.Fprintf(w, "\nMEMORY USAGE:\n")
	fmt.Fprintf(w, "  Heap Alloc: %s\n", formatBytes(r.HeapAlloc))
	fmt.Fprintf(w, "  Total Alloc: %s\n", formatBytes(r.TotalAlloc))
	fmt.Fprintf(w, "  GC Cycles: %d\n", r.NumGC)
}

// Reset discards all recorded timings.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.stages = make(map[string]*TimeTracker)
	p.order = nil
	p.rows.Reset()
}

func micros(v int64) time.Duration { return time.Duration(v) * time.Microsecond }

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
