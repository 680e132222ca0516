// Package ppahe implements Per-Pixel Adaptive Histogram Equalization.
//
// Every pixel gets its own square neighborhood whose side length shrinks where
// the image is busy (high local variance or gradient) and grows where it is
// flat. The pixel is then remapped through the contrast-limited CDF of that
// neighborhood. All intermediate structures are derived per call and shared
// read-only between row workers, so the result does not depend on the worker
// count.
package ppahe

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-ppahe/images/kernels"
)

// Stage names reported to a Recorder.
const (
	StageStatistics = "statistics"
	StageWindows    = "windows"
	StagePadding    = "padding"
	StageEqualize   = "equalize"
)

// Recorder receives timing information from an Enhance call. Implementations
// must be safe for concurrent use: RecordRow is called from every worker.
type Recorder interface {
	RecordStage(stage string, d time.Duration)
	RecordRow(d time.Duration)
}

// Engine runs PPAHE with a fixed, validated configuration. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	cfg         Config
	logger      zerolog.Logger
	recorder    Recorder
	onWindowMap func(*WindowMap)
	pool        *kernels.Pool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-stage debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRecorder attaches a stage and row timing recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithWindowMap registers a callback that receives the window map of every
// call before equalization starts. The map must not be modified.
func WithWindowMap(fn func(*WindowMap)) Option {
	return func(e *Engine) { e.onWindowMap = fn }
}

// WithPool shares intermediate buffers between calls.
func WithPool(pool *kernels.Pool) Option {
	return func(e *Engine) { e.pool = pool }
}

// New validates cfg and returns an Engine.
//
// Arguments:
// - cfg: The PPAHE parameters.
// - opts: Optional logger, recorder and hooks.
//
// Returns:
// - The engine, or a *ConfigurationError.
//
// @example
//
//	engine, err := ppahe.New(ppahe.DefaultConfig(), ppahe.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	enhanced, err := engine.Enhance(ctx, gray)
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Enhance validates the input and configuration, then runs PPAHE over img.
// It is a convenience wrapper around New and Engine.Enhance.
func Enhance(img image.Image, cfg Config) (*image.Gray, error) {
	if _, err := asGray(img); err != nil {
		return nil, err
	}
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return e.Enhance(context.Background(), img)
}

// Enhance returns a new image with the same bounds as img in which every pixel
// has been equalized within its adaptive neighborhood. img must be a non-empty
// *image.Gray; anything else yields an *InputFormatError before any work
// starts. ctx is checked between rows; on cancellation the context error is
// returned and no image.
func (e *Engine) Enhance(ctx context.Context, img image.Image) (*image.Gray, error) {
	src, err := asGray(img)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	width, height := b.Dx(), b.Dy()
	workers := kernels.Workers(e.cfg.workers(), height)
	log := e.logger.With().
		Int("width", width).
		Int("height", height).
		Int("workers", workers).
		Logger()

	start := time.Now()
	stats := computeStatistics(src, e.cfg.Sigma, workers, e.pool)
	e.stage(log, StageStatistics, start)
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "enhance cancelled")
	}

	start = time.Now()
	windows, err := MapWindowSizes(stats, e.cfg.MinWindow, e.cfg.MaxWindow)
	if err != nil {
		return nil, err
	}
	e.stage(log, StageWindows, start)
	if log.Debug().Enabled() {
		s := windows.Summary()
		log.Debug().
			Int("min", s.Min).
			Int("max", s.Max).
			Float64("mean", s.Mean).
			Float64("stddev", s.StdDev).
			Msg("window sizes")
	}
	if e.onWindowMap != nil {
		e.onWindowMap(windows)
	}

	start = time.Now()
	padded := Pad(src, e.cfg.MaxWindow)
	e.stage(log, StagePadding, start)

	start = time.Now()
	out := image.NewGray(b)
	if err := e.equalize(ctx, src, windows, padded, out, workers); err != nil {
		return nil, errors.Wrap(err, "enhance cancelled")
	}
	e.stage(log, StageEqualize, start)

	return out, nil
}

// equalize writes every output pixel. Rows are split into contiguous bands,
// one per worker; each worker owns its Equalizer scratch space and its band of
// output rows, so nothing is shared mutably.
func (e *Engine) equalize(ctx context.Context, src *image.Gray, windows *WindowMap, padded *Padded, out *image.Gray, workers int) error {
	mode := e.cfg.mode()

	return kernels.ParallelContext(ctx, windows.Height, workers, func(ctx context.Context, start, end int) error {
		eq := NewEqualizer(e.cfg.ClipLimit, e.cfg.Bins, mode)
		for y := start; y < end; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			var t time.Time
			if e.recorder != nil {
				t = time.Now()
			}

			in := src.Pix[y*src.Stride : y*src.Stride+windows.Width]
			dst := out.Pix[y*out.Stride : y*out.Stride+windows.Width]
			sizes := windows.Sizes[y*windows.Width : (y+1)*windows.Width]
			for x, size := range sizes {
				dst[x] = eq.Equalize(padded.Neighborhood(y, x, size), in[x])
			}

			if e.recorder != nil {
				e.recorder.RecordRow(time.Since(t))
			}
		}
		return nil
	})
}

func (e *Engine) stage(log zerolog.Logger, name string, start time.Time) {
	elapsed := time.Since(start)
	if e.recorder != nil {
		e.recorder.RecordStage(name, elapsed)
	}
	log.Debug().Str("stage", name).Dur("elapsed", elapsed).Msg("stage complete")
}

// asGray checks that img is a usable single-channel 8-bit image.
func asGray(img image.Image) (*image.Gray, error) {
	switch g := img.(type) {
	case nil:
		return nil, &InputFormatError{Reason: "image is nil"}
	case *image.Gray:
		if g == nil {
			return nil, &InputFormatError{Reason: "image is nil"}
		}
		if g.Rect.Empty() {
			return nil, &InputFormatError{Reason: fmt.Sprintf("image is empty (%v)", g.Rect)}
		}
		return g, nil
	default:
		return nil, &InputFormatError{
			Reason: fmt.Sprintf("%T is not a single-channel 8-bit image, want *image.Gray", img),
		}
	}
}
