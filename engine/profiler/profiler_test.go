package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickWaitsForInterval(t *testing.T) {
	var out bytes.Buffer
	p := NewProfiler(slog.New(slog.NewTextHandler(&out, nil)))
	p.SetInterval(time.Hour)

	for range 10 {
		assert.False(t, p.Tick())
	}
	assert.Empty(t, out.String())
	assert.Equal(t, Stats{}, p.Last())
}

func TestTickReports(t *testing.T) {
	var out bytes.Buffer
	p := NewProfiler(slog.New(slog.NewTextHandler(&out, nil)))
	p.SetInterval(time.Millisecond)

	p.Tick()
	time.Sleep(2 * time.Millisecond)
	require.True(t, p.Tick())

	assert.Greater(t, p.Last().FPS, 0.0)
	assert.Greater(t, p.Last().SysMB, 0.0)
	assert.Contains(t, out.String(), "msg=profiler")
	assert.Contains(t, out.String(), "fps=")
	assert.Equal(t, 0, p.frameCount)
}
