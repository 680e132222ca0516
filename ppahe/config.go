package ppahe

import (
	"math"
	"runtime"
)

// Mode selects the clip-limit redistribution algorithm.
type Mode string

const (
	// ModeConservative redistributes the clipped excess under the cap, so no bin
	// exceeds it afterwards, and interpolates the CDF at the center value. This is
	// the default.
	ModeConservative Mode = "conservative"
	// ModeApproximate redistributes the excess in a single pass and reads the
	// CDF directly at the center bin. Faster, but it does not conserve the
	// neighborhood pixel count and its output differs from ModeConservative.
	ModeApproximate Mode = "approximate"
)

// Default configuration values.
const (
	DefaultMinWindow = 3
	DefaultMaxWindow = 65
	DefaultClipLimit = 3.0
	DefaultBins      = 256
	DefaultSigma     = 2.0

	// MaxBins keeps every output intensity representable in 8 bits.
	MaxBins = 256
)

// Config holds the PPAHE parameters.
type Config struct {
	// MinWindow is the smallest neighborhood side length (odd).
	MinWindow int `json:"min_window" yaml:"min_window"`
	// MaxWindow is the largest neighborhood side length (odd). It also sets the
	// padding of the shared source buffer, MaxWindow/2 on every side.
	MaxWindow int `json:"max_window" yaml:"max_window"`
	// ClipLimit scales the per-bin cap: floor(window² * ClipLimit / Bins).
	ClipLimit float64 `json:"clip_limit" yaml:"clip_limit"`
	// Bins is the histogram bin count over the intensity range [0, Bins-1].
	Bins int `json:"n_bins" yaml:"n_bins"`
	// Sigma is the Gaussian standard deviation of the local variance estimate.
	Sigma float64 `json:"sigma" yaml:"sigma"`
	// Parallelism is the number of row workers. 0 uses one per CPU; 1 runs
	// sequentially on the calling goroutine.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
	// Mode selects the redistribution algorithm; empty means ModeConservative.
	Mode Mode `json:"mode" yaml:"mode"`
}

// DefaultConfig returns the default parameters with one worker per CPU.
func DefaultConfig() Config {
	return Config{
		MinWindow:   DefaultMinWindow,
		MaxWindow:   DefaultMaxWindow,
		ClipLimit:   DefaultClipLimit,
		Bins:        DefaultBins,
		Sigma:       DefaultSigma,
		Parallelism: runtime.NumCPU(),
		Mode:        ModeConservative,
	}
}

// Validate reports the first invalid field as a *ConfigurationError.
func (c Config) Validate() error {
	if err := validateWindowBounds(c.MinWindow, c.MaxWindow); err != nil {
		return err
	}
	if math.IsNaN(c.ClipLimit) || math.IsInf(c.ClipLimit, 0) || c.ClipLimit <= 0 {
		return &ConfigurationError{Field: "clip_limit", Value: c.ClipLimit, Reason: "must be a finite positive number"}
	}
	if c.Bins <= 1 {
		return &ConfigurationError{Field: "n_bins", Value: c.Bins, Reason: "must be greater than 1"}
	}
	if c.Bins > MaxBins {
		return &ConfigurationError{Field: "n_bins", Value: c.Bins, Reason: "must not exceed 256 for 8-bit output"}
	}
	if math.IsNaN(c.Sigma) || math.IsInf(c.Sigma, 0) || c.Sigma < 0 {
		return &ConfigurationError{Field: "sigma", Value: c.Sigma, Reason: "must be a finite non-negative number"}
	}
	if c.Parallelism < 0 {
		return &ConfigurationError{Field: "parallelism", Value: c.Parallelism, Reason: "must not be negative"}
	}
	switch c.Mode {
	case "", ModeConservative, ModeApproximate:
	default:
		return &ConfigurationError{Field: "mode", Value: c.Mode, Reason: "must be conservative or approximate"}
	}
	return nil
}

// workers resolves Parallelism to a concrete worker count.
func (c Config) workers() int {
	if c.Parallelism == 0 {
		return runtime.NumCPU()
	}
	return c.Parallelism
}

func (c Config) mode() Mode {
	if c.Mode == "" {
		return ModeConservative
	}
	return c.Mode
}

func validateWindowBounds(minWindow, maxWindow int) error {
	if minWindow < 1 || minWindow%2 == 0 {
		return &ConfigurationError{Field: "min_window", Value: minWindow, Reason: "must be a positive odd number"}
	}
	if maxWindow < 1 || maxWindow%2 == 0 {
		return &ConfigurationError{Field: "max_window", Value: maxWindow, Reason: "must be a positive odd number"}
	}
	if minWindow > maxWindow {
		return &ConfigurationError{Field: "min_window", Value: minWindow, Reason: "must not exceed max_window"}
	}
	return nil
}
