package main

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-ppahe/benchmark"
	"github.com/nvr-ai/go-ppahe/images"
	"github.com/nvr-ai/go-ppahe/ppahe"
	"github.com/nvr-ai/go-ppahe/util"
)

func writeInput(t *testing.T, path string, format images.ImageFormat) *image.Gray {
	t.Helper()
	img := benchmark.SyntheticFrame(40, 30, 2)
	var buf bytes.Buffer
	require.NoError(t, images.Encode(&buf, img, format))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return img
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, logs bytes.Buffer
	cmd := newRootCommand(&logs)
	cmd.SetOut(&stdout)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), logs.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ppahe dev\n", out)
}

func TestEnhanceSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.png")
	src := writeInput(t, in, images.FormatPNG)
	out := filepath.Join(dir, "out", "enhanced.png")

	_, logs, err := execute(t, "enhance", "--max-window", "15", "--parallelism", "2", "--window-map", "-o", out, in)
	require.NoError(t, err, logs)
	assert.Contains(t, logs, "enhanced")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, format, err := images.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, images.FormatPNG, format)

	cfg := ppahe.DefaultConfig()
	cfg.MaxWindow = 15
	want, err := ppahe.Enhance(src, cfg)
	require.NoError(t, err)
	assert.Equal(t, images.Checksum(want), images.Checksum(images.ToGray(img, images.GrayLuma)))

	assert.FileExists(t, filepath.Join(dir, "out", "enhanced.windows.png"))
}

func TestEnhanceDirectory(t *testing.T) {
	in := t.TempDir()
	writeInput(t, filepath.Join(in, "a.png"), images.FormatPNG)
	writeInput(t, filepath.Join(in, "b.bmp"), images.FormatBMP)
	outDir := t.TempDir()

	_, logs, err := execute(t, "enhance", "--max-window", "9", "--format", "tiff", "--output-dir", outDir, "--profile", in)
	require.NoError(t, err, logs)
	assert.FileExists(t, filepath.Join(outDir, "a_ppahe.tiff"))
	assert.FileExists(t, filepath.Join(outDir, "b_ppahe.tiff"))
	assert.Contains(t, logs, "row latency")
}

func TestEnhanceDefaultOutputNextToInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "shot.bmp")
	writeInput(t, in, images.FormatBMP)

	_, logs, err := execute(t, "enhance", "--min-window", "3", "--max-window", "5", in)
	require.NoError(t, err, logs)
	assert.FileExists(t, filepath.Join(dir, "shot_ppahe.bmp"))
}

func TestEnhanceErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.png")
	writeInput(t, in, images.FormatPNG)

	_, _, err := execute(t, "enhance", "--min-window", "4", in)
	assert.ErrorIs(t, err, ppahe.ErrConfiguration)

	_, _, err = execute(t, "enhance", "--gray", "average", in)
	assert.Error(t, err)

	_, _, err = execute(t, "enhance", filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	_, _, err = execute(t, "enhance", "-o", filepath.Join(dir, "x.png"), in, in)
	assert.Error(t, err)

	_, _, err = execute(t, "enhance")
	assert.Error(t, err)

	_, _, err = execute(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ppahe.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_window: 21\nclip_limit: 5\n"), 0o644))

	var logs bytes.Buffer
	root := newRootCommand(&logs)
	enhance, _, err := root.Find([]string{"enhance"})
	require.NoError(t, err)
	require.NoError(t, enhance.ParseFlags([]string{"--config", cfgPath, "--clip-limit", "2", "--approximate"}))

	opts := &enhanceOptions{}
	// Mirror the parsed flag values into a fresh options value.
	opts.configPath, _ = enhance.Flags().GetString("config")
	opts.approximate, _ = enhance.Flags().GetBool("approximate")
	opts.cfg.ClipLimit, _ = enhance.Flags().GetFloat64("clip-limit")

	cfg, err := opts.resolveConfig(enhance)
	require.NoError(t, err)

	fromFile, err := util.LoadConfigFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 21, cfg.MaxWindow, "file value kept")
	assert.Equal(t, 2.0, cfg.ClipLimit, "explicit flag wins")
	assert.Equal(t, ppahe.ModeApproximate, cfg.Mode)
	assert.Equal(t, fromFile.MinWindow, cfg.MinWindow)
}

func TestBenchCommand(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios.json")
	set := &benchmark.ScenarioSet{
		Name: "tiny",
		Scenarios: []benchmark.Scenario{
			benchmark.NewScenarioBuilder("tiny").WithResolution(24, 16).WithWindows(3, 9).WithIterations(1).Build(),
		},
	}
	require.NoError(t, benchmark.SaveScenarioSet(set, scenarios))

	outDir := filepath.Join(dir, "results")
	_, logs, err := execute(t, "bench", "--scenarios", scenarios, "--output-dir", outDir)
	require.NoError(t, err, logs)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, _, err = execute(t, "bench", "--set", "nope")
	assert.Error(t, err)

	_, _, err = execute(t, "bench", "--set", "windows", "--resolution", "huge")
	assert.Error(t, err)
}
