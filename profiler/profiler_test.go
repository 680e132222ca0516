package profiler

import (
	"bytes"
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-ppahe/ppahe"
)

var _ ppahe.Recorder = (*Profiler)(nil)

func TestProfilerStages(t *testing.T) {
	p := New()
	p.RecordStage("statistics", 4*time.Millisecond)
	p.RecordStage("windows", time.Millisecond)
	p.RecordStage("statistics", 2*time.Millisecond)

	r := p.Report()
	require.Len(t, r.Stages, 2)

	s := r.Stages[0]
	assert.Equal(t, "statistics", s.Name)
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, 6*time.Millisecond, s.Total)
	assert.Equal(t, 2*time.Millisecond, s.Min)
	assert.Equal(t, 4*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg)
	assert.Equal(t, "windows", r.Stages[1].Name)
}

func TestProfilerRows(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 100; i++ {
				p.RecordRow(time.Duration(i) * time.Microsecond)
			}
		}()
	}
	wg.Wait()

	// Out-of-range values are clamped rather than dropped.
	p.RecordRow(0)
	p.RecordRow(2 * time.Minute)

	rows := p.Report().Rows
	assert.Equal(t, int64(402), rows.Count)
	assert.InDelta(t, float64(50*time.Microsecond), float64(rows.P50), float64(time.Microsecond))
	assert.InDelta(t, float64(time.Minute), float64(rows.Max), float64(100*time.Millisecond))
}

func TestProfilerStartOperation(t *testing.T) {
	p := New()
	done := p.StartOperation("decode")
	done()

	r := p.Report()
	require.Len(t, r.Stages, 1)
	assert.Equal(t, "decode", r.Stages[0].Name)
	assert.Equal(t, int64(1), r.Stages[0].Count)
}

func TestProfilerReset(t *testing.T) {
	p := New()
	p.RecordStage("padding", time.Millisecond)
	p.RecordRow(time.Millisecond)
	p.Reset()

	r := p.Report()
	assert.Empty(t, r.Stages)
	assert.Zero(t, r.Rows.Count)
}

func TestProfilerWithEngine(t *testing.T) {
	p := New()
	cfg := ppahe.DefaultConfig()
	cfg.Parallelism = 2
	e, err := ppahe.New(cfg, ppahe.WithRecorder(p))
	require.NoError(t, err)

	img := image.NewGray(image.Rect(0, 0, 16, 12))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	_, err = e.Enhance(context.Background(), img)
	require.NoError(t, err)

	r := p.Report()
	assert.Equal(t, int64(12), r.Rows.Count)
	names := make([]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{ppahe.StageStatistics, ppahe.StageWindows, ppahe.StagePadding, ppahe.StageEqualize}, names)

	var out bytes.Buffer
	p.WriteReport(&out)
	assert.Contains(t, out.String(), "STAGE TIMINGS")
	assert.Contains(t, out.String(), "ROW LATENCY")

	var logs bytes.Buffer
	p.Log(zerolog.New(&logs))
	assert.Contains(t, logs.String(), `"stage":"equalize"`)
	assert.Contains(t, logs.String(), `"rows":12`)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}
