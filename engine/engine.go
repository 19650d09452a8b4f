package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gpu/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gpu/engine/window"
)

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine: no window")

// engine implements the Engine interface.
type engine struct {
	window window.Window
	logger *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameLimit time.Duration // minimum frame duration; 0 = uncapped

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
}

// Engine drives the presentation loop: it pumps the window, times frames and calls the
// frame function until the window closes, Quit is called or a frame fails.
type Engine interface {
	// Window returns the window the engine drives.
	//
	// Returns:
	//   - window.Window: the window instance, or nil
	Window() window.Window

	// EnableProfiler enables per-interval frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default). Ignored in the browser, where frames follow
	// requestAnimationFrame.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run calls frame once per iteration until the window asks to close or Quit is called,
	// then closes the window. A frame error stops the loop and is returned.
	//
	// Parameters:
	//   - frame: function receiving the time since the previous frame in seconds
	//
	// Returns:
	//   - error: the first frame error, ErrNoWindow, or the window close failure
	Run(frame func(dt float32) error) error

	// Quit stops the loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit, logger)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.logger == nil {
		e.logger = gpu.Logger()
	}
	e.profiler = profiler.NewProfiler(e.logger)
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameLimit(fps float64) {
	e.frameLimit = frameDuration(fps)
}

func (e *engine) Run(frame func(dt float32) error) error {
	if e.window == nil {
		return ErrNoWindow
	}
	e.logger.Info("engine loop started", "frameLimit", e.frameLimit)
	err := e.loop(frame)
	if cerr := e.window.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	e.logger.Info("engine loop stopped", "error", err)
	return err
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

// step runs one iteration: pump the window, call frame and record profiling.
func (e *engine) step(frame func(dt float32) error, dt float32) error {
	e.window.Update()
	if err := frame(dt); err != nil {
		return err
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return nil
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
