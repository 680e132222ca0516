// Package benchmark - Functionality for running enhancement benchmarks.
package benchmark

import "time"

// PerformanceMetrics captures detailed performance data
type PerformanceMetrics struct {
	Scenario        Scenario      `json:"scenario"`
	Timestamp       time.Time     `json:"timestamp"`
	Iterations      int           `json:"iterations"`
	TotalDuration   time.Duration `json:"total_duration"`
	MeanDuration    time.Duration `json:"mean_duration"`
	FramesPerSecond float64       `json:"frames_per_second"`
	// MegapixelsPerSecond normalizes throughput across resolutions.
	MegapixelsPerSecond float64       `json:"megapixels_per_second"`
	Stages              []StageMetric `json:"stages"`
	RowP99              time.Duration `json:"row_p99"`
	MemoryStats         MemoryMetrics `json:"memory_stats"`
	CPUStats            CPUMetrics    `json:"cpu_stats"`
	Checksum            string        `json:"checksum"`
	ErrorRate           float64       `json:"error_rate"`
}

// StageMetric is the mean time spent in one pipeline stage per frame.
type StageMetric struct {
	Name string        `json:"name"`
	Mean time.Duration `json:"mean"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU  int `json:"num_cpu"`
	Workers int `json:"workers"`
}
