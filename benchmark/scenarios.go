package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-ppahe/images"
	"github.com/nvr-ai/go-ppahe/ppahe"
)

// Resolution represents image dimensions for benchmarking
type Resolution = images.FrameSize

// CommonResolutions are the frame sizes used by the predefined scenario sets.
var CommonResolutions = commonResolutions("qvga", "vga", "720p", "1080p")

func commonResolutions(names ...string) []Resolution {
	out := make([]Resolution, 0, len(names))
	for _, name := range names {
		res, err := images.ParseFrameSize(name)
		if err != nil {
			panic(err)
		}
		out = append(out, res)
	}
	return out
}

// Scenario defines a specific test configuration
type Scenario struct {
	Name       string       `json:"name"`
	Resolution Resolution   `json:"resolution"`
	Config     ppahe.Config `json:"config"`
	Iterations int          `json:"iterations"`
	WarmupRuns int          `json:"warmup_runs"`
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder with the default
// enhancement configuration.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Config:     ppahe.DefaultConfig(),
			Iterations: 10,
			WarmupRuns: 1,
		},
	}
}

// WithResolution sets the image resolution
func (sb *ScenarioBuilder) WithResolution(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = Resolution{
		Width:  width,
		Height: height,
		Name:   fmt.Sprintf("%dx%d", width, height),
	}
	return sb
}

// WithConfig replaces the enhancement configuration.
func (sb *ScenarioBuilder) WithConfig(cfg ppahe.Config) *ScenarioBuilder {
	sb.scenario.Config = cfg
	return sb
}

// WithWindows sets the window size bounds.
func (sb *ScenarioBuilder) WithWindows(minWindow, maxWindow int) *ScenarioBuilder {
	sb.scenario.Config.MinWindow = minWindow
	sb.scenario.Config.MaxWindow = maxWindow
	return sb
}

// WithMode sets the redistribution mode.
func (sb *ScenarioBuilder) WithMode(mode ppahe.Mode) *ScenarioBuilder {
	sb.scenario.Config.Mode = mode
	return sb
}

// WithParallelism sets the number of row workers.
func (sb *ScenarioBuilder) WithParallelism(workers int) *ScenarioBuilder {
	sb.scenario.Config.Parallelism = workers
	return sb
}

// WithIterations sets the number of test iterations
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// QuickScenarios returns a small set covering both modes at two resolutions.
func QuickScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, resolution := range CommonResolutions[:2] {
		for _, mode := range []ppahe.Mode{ppahe.ModeConservative, ppahe.ModeApproximate} {
			scenario := NewScenarioBuilder(fmt.Sprintf("quick_%s_%s", resolution.Name, mode)).
				WithResolution(resolution.Width, resolution.Height).
				WithMode(mode).
				WithIterations(5).
				Build()
			scenarios = append(scenarios, scenario)
		}
	}

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Both redistribution modes at small resolutions",
		Scenarios:   scenarios,
	}
}

// ParallelismScenarios compares worker counts at one resolution.
func ParallelismScenarios(resolution Resolution, workers []int) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(workers))
	for _, w := range workers {
		scenario := NewScenarioBuilder(fmt.Sprintf("parallel_%s_w%d", resolution.Name, w)).
			WithResolution(resolution.Width, resolution.Height).
			WithParallelism(w).
			Build()
		scenarios = append(scenarios, scenario)
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Parallelism Comparison @ %s", resolution.Name),
		Description: "Compares row worker counts with the default configuration",
		Scenarios:   scenarios,
	}
}

// WindowScenarios compares maximum window sizes at one resolution. Larger
// windows cost quadratically more per pixel.
func WindowScenarios(resolution Resolution, maxWindows []int) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(maxWindows))
	for _, m := range maxWindows {
		scenario := NewScenarioBuilder(fmt.Sprintf("window_%s_max%d", resolution.Name, m)).
			WithResolution(resolution.Width, resolution.Height).
			WithWindows(ppahe.DefaultMinWindow, m).
			Build()
		scenarios = append(scenarios, scenario)
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Window Size Comparison @ %s", resolution.Name),
		Description: "Compares maximum window sizes with the default configuration",
		Scenarios:   scenarios,
	}
}

// Validate checks every scenario's dimensions and configuration.
func (s *ScenarioSet) Validate() error {
	for _, sc := range s.Scenarios {
		if sc.Resolution.Width <= 0 || sc.Resolution.Height <= 0 {
			return errors.Errorf("scenario %s: invalid resolution %dx%d", sc.Name, sc.Resolution.Width, sc.Resolution.Height)
		}
		if sc.Iterations <= 0 {
			return errors.Errorf("scenario %s: iterations must be positive", sc.Name)
		}
		if err := sc.Config.Validate(); err != nil {
			return errors.Wrapf(err, "scenario %s", sc.Name)
		}
	}
	return nil
}

// SaveScenarioSet saves a scenario set to a JSON file
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}

	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file and validates it.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	if err := scenarioSet.Validate(); err != nil {
		return nil, err
	}
	return &scenarioSet, nil
}
