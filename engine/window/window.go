package window

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
)

// Window is the platform surface the engine presents to.
// On native builds it wraps a GLFW window; in the browser it wraps a <canvas> element.
type Window interface {
	gpu.Surface

	// IsCloseRequested reports whether the user or the program asked the window to close.
	//
	// Returns:
	//   - bool: true once the window should close
	IsCloseRequested() bool

	// Update pumps pending platform events without blocking. Resize callbacks fire from here.
	Update()

	// SetTitle changes the title bar text, or the document title in the browser.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SetResizeCallback sets the function called when the drawable size changes.
	//
	// Parameters:
	//   - callback: function receiving the new size in pixels (or nil to disable)
	SetResizeCallback(callback func(size common.Size))

	// Close releases the platform window. Closing twice returns an error.
	//
	// Returns:
	//   - error: error if the window is not open
	Close() error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// canvasID is the id of the <canvas> element used in the browser.
	canvasID string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// size is the current drawable size in pixels.
	size common.Size

	// internalWindow holds the platform-specific window data.
	internalWindow any

	// onResize is called when the drawable size changes.
	onResize func(size common.Size)
}

var _ Window = &engineWindow{}

// newEngineWindow applies the defaults and then each option in order.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy-gpu",
		canvasID:  "oxy-gpu",
		maxWidth:  glfwDontCare,
		maxHeight: glfwDontCare,
		minWidth:  glfwDontCare,
		minHeight: glfwDontCare,
		size:      common.Size{Width: 1280, Height: 720},
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// NewWindow creates and shows a window configured by options.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("create platform window: %w", err)
	}
	gpu.Logger().Info("window created", "title", w.title, "size", w.size.String())
	return w, nil
}

// Surface returns the platform handle the gpu backends present to: a *wgpu.SurfaceDescriptor on
// native builds and the canvas js.Value in the browser. It is nil once the window is closed.
func (w *engineWindow) Surface() any {
	return platformSurface(w)
}

func (w *engineWindow) Size() common.Size {
	return w.size
}

func (w *engineWindow) IsCloseRequested() bool {
	return platformIsCloseRequested(w)
}

func (w *engineWindow) Update() {
	platformUpdate(w)
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SetResizeCallback(callback func(size common.Size)) {
	w.onResize = callback
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

// resized records a new drawable size and notifies the resize callback when it changed.
func (w *engineWindow) resized(size common.Size) {
	if size == w.size {
		return
	}
	w.size = size
	gpu.Logger().Debug("window resized", "size", size.String())
	if w.onResize != nil {
		w.onResize(size)
	}
}

// glfwDontCare mirrors glfw.DontCare so size limits stay unset unless configured.
const glfwDontCare = -1
