package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-ppahe/images"
	"github.com/nvr-ai/go-ppahe/images/kernels"
	"github.com/nvr-ai/go-ppahe/ppahe"
	"github.com/nvr-ai/go-ppahe/profiler"
	"github.com/nvr-ai/go-ppahe/util"
)

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios []Scenario
	outputDir string
	corpus    []*image.Gray
	logger    zerolog.Logger
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - outputDir: Directory that SaveResults writes into.
//   - logger: Receives one event per completed scenario.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(outputDir string, logger zerolog.Logger) *Suite {
	return &Suite{
		outputDir: outputDir,
		logger:    logger,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of set.
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, s := range set.Scenarios {
		bs.AddScenario(s)
	}
}

// LoadCorpus decodes every image in dir to gray and uses them as benchmark
// frames, resized to each scenario's resolution. Without a corpus the suite
// generates synthetic frames.
func (bs *Suite) LoadCorpus(dir string) error {
	files, err := util.LoadDirectoryImageFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no images found in %s", dir)
	}

	corpus := make([]*image.Gray, 0, len(files))
	for _, f := range files {
		img, _, err := images.Decode(f.Data)
		if err != nil {
			return errors.Wrapf(err, "corpus image %s", f.Path)
		}
		gray := images.ToGray(img, images.GrayLuma)
		b := gray.Bounds()
		event := bs.logger.Debug().Str("file", f.Path).Int("width", b.Dx()).Int("height", b.Dy())
		if size, ok := images.LargestFrameSizeWithin(b.Dx(), b.Dy()); ok {
			event = event.Str("class", size.Name)
		}
		event.Msg("corpus image")
		corpus = append(corpus, gray)
	}

	bs.mu.Lock()
	bs.corpus = corpus
	bs.mu.Unlock()
	return nil
}

// frames returns the inputs for a scenario.
func (bs *Suite) frames(res Resolution) []*image.Gray {
	bs.mu.RLock()
	corpus := bs.corpus
	bs.mu.RUnlock()

	if len(corpus) == 0 {
		return []*image.Gray{SyntheticFrame(res.Width, res.Height, 1)}
	}
	out := make([]*image.Gray, len(corpus))
	for i, img := range corpus {
		out[i] = images.Resize(img, res.Width, res.Height)
	}
	return out
}

// SyntheticFrame builds a deterministic test frame: a diagonal gradient with a
// bright block and mild noise, giving both flat and busy regions.
func SyntheticFrame(width, height int, seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := (x + y) * 200 / max(width+height, 1)
			if x > width/3 && x < width/2 && y > height/3 && y < height/2 {
				v += 40
			}
			v += rng.Intn(9) - 4
			img.Pix[y*img.Stride+x] = uint8(min(max(v, 0), 255))
		}
	}
	return img
}

// RunScenario executes a single benchmark scenario
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Iterations <= 0 {
		return nil, errors.Errorf("scenario %s: iterations must be positive", scenario.Name)
	}

	prof := profiler.New()
	engine, err := ppahe.New(scenario.Config, ppahe.WithRecorder(prof), ppahe.WithPool(&kernels.Pool{}))
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}
	frames := bs.frames(scenario.Resolution)

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := engine.Enhance(ctx, frames[i%len(frames)]); err != nil {
			return nil, err
		}
	}
	prof.Reset()

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	startTime := time.Now()
	failures := 0
	var last *image.Gray

	// Run benchmark iterations
	for i := 0; i < scenario.Iterations; i++ {
		out, err := engine.Enhance(ctx, frames[i%len(frames)])
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.Wrap(ctxErr, "benchmark cancelled")
			}
			failures++
			continue
		}
		last = out
	}

	totalDuration := time.Since(startTime)

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	pixels := float64(scenario.Resolution.Width * scenario.Resolution.Height)
	report := prof.Report()

	metrics := &PerformanceMetrics{
		Scenario:            scenario,
		Timestamp:           time.Now(),
		Iterations:          scenario.Iterations,
		TotalDuration:       totalDuration,
		MeanDuration:        totalDuration / time.Duration(scenario.Iterations),
		FramesPerSecond:     float64(scenario.Iterations) / totalDuration.Seconds(),
		MegapixelsPerSecond: pixels * float64(scenario.Iterations) / 1e6 / totalDuration.Seconds(),
		RowP99:              report.Rows.P99,
		ErrorRate:           float64(failures) / float64(scenario.Iterations),
	}
	for _, s := range report.Stages {
		metrics.Stages = append(metrics.Stages, StageMetric{Name: s.Name, Mean: s.Avg})
	}
	if last != nil {
		metrics.Checksum = images.Checksum(last)
	}

	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	workers := scenario.Config.Parallelism
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	metrics.CPUStats = CPUMetrics{
		NumCPU:  runtime.NumCPU(),
		Workers: workers,
	}

	return metrics, nil
}

// RunAllScenarios executes all configured benchmark scenarios. A failing
// scenario is logged and skipped; cancellation stops the run.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	bs.mu.Lock()
	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	bs.mu.Unlock()

	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			bs.logger.Error().Err(err).Str("scenario", scenario.Name).Msg("scenario failed")
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		bs.logger.Info().
			Str("scenario", scenario.Name).
			Float64("fps", metrics.FramesPerSecond).
			Float64("mpx_per_sec", metrics.MegapixelsPerSecond).
			Dur("mean", metrics.MeanDuration).
			Msg("scenario completed")
	}
	return nil
}

// SaveResults persists benchmark results to filesystem as a detailed JSON file
// and a CSV summary, returning both paths.
func (bs *Suite) SaveResults() (string, string, error) {
	results := bs.GetResults()

	// Ensure output directory exists
	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", "", errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return "", "", errors.Wrap(err, "failed to save summary CSV")
	}

	return resultsFile, summaryFile, nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header := "Scenario,Resolution,Mode,Min_Window,Max_Window,Workers,FPS,MPx_per_s,Mean_ms,Row_P99_us,Total_Alloc_MB,Error_Rate\n"
	if _, err := file.WriteString(header); err != nil {
		return err
	}

	for _, result := range results {
		cfg := result.Scenario.Config
		line := fmt.Sprintf("%s,%s,%s,%d,%d,%d,%.2f,%.2f,%.2f,%d,%.2f,%.4f\n",
			result.Scenario.Name,
			result.Scenario.Resolution.Name,
			cfg.Mode,
			cfg.MinWindow,
			cfg.MaxWindow,
			result.CPUStats.Workers,
			result.FramesPerSecond,
			result.MegapixelsPerSecond,
			float64(result.MeanDuration.Nanoseconds())/1e6,
			result.RowP99.Microseconds(),
			float64(result.MemoryStats.TotalAllocBytes)/(1024*1024),
			result.ErrorRate,
		)
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
