package main

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-ppahe/images"
	"github.com/nvr-ai/go-ppahe/images/kernels"
	"github.com/nvr-ai/go-ppahe/ppahe"
	"github.com/nvr-ai/go-ppahe/profiler"
	"github.com/nvr-ai/go-ppahe/util"
)

// outputSuffix is appended to the input name when no explicit output is given.
const outputSuffix = "_ppahe"

type enhanceOptions struct {
	configPath   string
	output       string
	outputDir    string
	format       string
	gray         string
	maxDimension int
	windowMap    bool
	profile      bool
	approximate  bool

	cfg ppahe.Config
}

func newEnhanceCommand(log func() *zerolog.Logger) *cobra.Command {
	opts := &enhanceOptions{cfg: ppahe.DefaultConfig()}

	cmd := &cobra.Command{
		Use:   "enhance [flags] <input>...",
		Short: "Enhance image files or directories of images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := runEnhance(cmd.Context(), *log(), opts, cfg, args); err != nil {
				log().Error().Err(err).Msg("enhance failed")
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	f.StringVarP(&opts.output, "output", "o", "", "output file (single input only)")
	f.StringVar(&opts.outputDir, "output-dir", "", "directory for output files")
	f.StringVar(&opts.format, "format", "", "output format (png, jpeg, webp, tiff, bmp); default keeps the input format")
	f.StringVar(&opts.gray, "gray", string(images.GrayLuma), "color to gray conversion (luma, lightness)")
	f.IntVar(&opts.maxDimension, "max-dimension", 0, "downscale inputs so neither side exceeds this (0 keeps the size)")
	f.BoolVar(&opts.windowMap, "window-map", false, "also write the window size map as <output>.windows.png")
	f.BoolVar(&opts.profile, "profile", false, "log stage timings and row latency percentiles")
	f.BoolVar(&opts.approximate, "approximate", false, "shorthand for --mode approximate")

	f.IntVar(&opts.cfg.MinWindow, "min-window", opts.cfg.MinWindow, "smallest neighborhood side (odd)")
	f.IntVar(&opts.cfg.MaxWindow, "max-window", opts.cfg.MaxWindow, "largest neighborhood side (odd)")
	f.Float64Var(&opts.cfg.ClipLimit, "clip-limit", opts.cfg.ClipLimit, "histogram clip limit")
	f.IntVar(&opts.cfg.Bins, "bins", opts.cfg.Bins, "histogram bins")
	f.Float64Var(&opts.cfg.Sigma, "sigma", opts.cfg.Sigma, "Gaussian sigma of the local variance")
	f.IntVar(&opts.cfg.Parallelism, "parallelism", opts.cfg.Parallelism, "row workers (0 = one per CPU)")
	f.StringVar((*string)(&opts.cfg.Mode), "mode", string(opts.cfg.Mode), "redistribution mode (conservative, approximate)")

	return cmd
}

// resolveConfig starts from the config file (or defaults) and applies only
// the flags set on the command line.
func (o *enhanceOptions) resolveConfig(cmd *cobra.Command) (ppahe.Config, error) {
	cfg := ppahe.DefaultConfig()
	if o.configPath != "" {
		loaded, err := util.LoadConfigFile(o.configPath)
		if err != nil {
			return ppahe.Config{}, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("min-window") {
		cfg.MinWindow = o.cfg.MinWindow
	}
	if f.Changed("max-window") {
		cfg.MaxWindow = o.cfg.MaxWindow
	}
	if f.Changed("clip-limit") {
		cfg.ClipLimit = o.cfg.ClipLimit
	}
	if f.Changed("bins") {
		cfg.Bins = o.cfg.Bins
	}
	if f.Changed("sigma") {
		cfg.Sigma = o.cfg.Sigma
	}
	if f.Changed("parallelism") {
		cfg.Parallelism = o.cfg.Parallelism
	}
	if f.Changed("mode") {
		cfg.Mode = o.cfg.Mode
	}
	if o.approximate {
		cfg.Mode = ppahe.ModeApproximate
	}

	return cfg, cfg.Validate()
}

func runEnhance(ctx context.Context, logger zerolog.Logger, opts *enhanceOptions, cfg ppahe.Config, args []string) error {
	gray, err := images.ParseGrayMethod(opts.gray)
	if err != nil {
		return err
	}
	var format images.ImageFormat
	if opts.format != "" {
		if format, err = images.ParseFormat(opts.format); err != nil {
			return err
		}
	}

	files, err := collectInputs(args)
	if err != nil {
		return err
	}
	if opts.output != "" && len(files) != 1 {
		return errors.Errorf("--output needs exactly one input, got %d", len(files))
	}

	var windows *ppahe.WindowMap
	prof := profiler.New()
	engineOpts := []ppahe.Option{
		ppahe.WithLogger(logger),
		ppahe.WithPool(&kernels.Pool{}),
		ppahe.WithWindowMap(func(m *ppahe.WindowMap) { windows = m }),
	}
	if opts.profile {
		engineOpts = append(engineOpts, ppahe.WithRecorder(prof))
	}
	engine, err := ppahe.New(cfg, engineOpts...)
	if err != nil {
		return err
	}

	logger.Debug().
		Int("min_window", cfg.MinWindow).
		Int("max_window", cfg.MaxWindow).
		Float64("clip_limit", cfg.ClipLimit).
		Int("bins", cfg.Bins).
		Str("mode", string(cfg.Mode)).
		Int("inputs", len(files)).
		Msg("starting")

	failed := 0
	for _, file := range files {
		start := time.Now()
		if info, err := images.Probe(file.Data); err == nil {
			logger.Debug().
				Str("input", file.Path).
				Str("format", string(info.Format)).
				Int("width", info.Width).
				Int("height", info.Height).
				Msg("decoding")
		}
		out, err := enhanceFile(ctx, engine, file, gray, opts.maxDimension)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return errors.Wrap(ctxErr, "interrupted")
			}
			logger.Error().Err(err).Str("input", file.Path).Msg("failed to enhance")
			failed++
			continue
		}

		target := outputPath(file, opts, format)
		targetFormat := format
		if targetFormat == "" {
			targetFormat = file.Format
		}
		if err := writeImage(target, out, targetFormat); err != nil {
			logger.Error().Err(err).Str("output", target).Msg("failed to write")
			failed++
			continue
		}
		if opts.windowMap && windows != nil {
			mapPath := strings.TrimSuffix(target, filepath.Ext(target)) + ".windows.png"
			if err := writeImage(mapPath, windows.Image(), images.FormatPNG); err != nil {
				logger.Error().Err(err).Str("output", mapPath).Msg("failed to write window map")
				failed++
				continue
			}
		}

		logger.Info().
			Str("input", file.Path).
			Str("output", target).
			Int("width", out.Bounds().Dx()).
			Int("height", out.Bounds().Dy()).
			Str("checksum", images.Checksum(out)).
			Dur("elapsed", time.Since(start)).
			Msg("enhanced")
	}

	if opts.profile {
		prof.Log(logger)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d inputs failed", failed, len(files))
	}
	return nil
}

// collectInputs expands directory arguments into their supported image files.
func collectInputs(args []string) ([]util.ImageFile, error) {
	var files []util.ImageFile
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", arg)
		}
		if info.IsDir() {
			dirFiles, err := util.LoadDirectoryImageFiles(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, dirFiles...)
			continue
		}
		file, err := util.LoadImageFile(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, errors.New("no supported images in the given inputs")
	}
	return files, nil
}

func enhanceFile(ctx context.Context, engine *ppahe.Engine, file util.ImageFile, method images.GrayMethod, maxDim int) (*image.Gray, error) {
	img, _, err := images.Decode(file.Data)
	if err != nil {
		return nil, err
	}
	gray := images.Downscale(images.ToGray(img, method), maxDim)
	return engine.Enhance(ctx, gray)
}

// outputPath picks the destination for file: --output, else --output-dir or
// the input's directory with outputSuffix added to the name.
func outputPath(file util.ImageFile, opts *enhanceOptions, format images.ImageFormat) string {
	if opts.output != "" {
		return opts.output
	}
	dir := filepath.Dir(file.Path)
	if opts.outputDir != "" {
		dir = opts.outputDir
	}
	base := filepath.Base(file.Path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + outputSuffix
	if format != "" {
		ext = "." + string(format)
	}
	return filepath.Join(dir, name+ext)
}

func writeImage(path string, img image.Image, format images.ImageFormat) error {
	var buf bytes.Buffer
	if err := images.Encode(&buf, img, format); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
