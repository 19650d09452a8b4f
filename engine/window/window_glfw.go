//go:build !js

package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

// GLFW must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window *glfw.Window
	// surface is created once so the native backend sees a stable surface identity.
	surface *wgpu.SurfaceDescriptor
	closed  bool
}

// newPlatformWindow creates the GLFW window and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.size.Width, w.size.Height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{window: win}
	w.internalWindow = gw

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(common.Size{Width: width, Height: height})
	})

	fbWidth, fbHeight := win.GetFramebufferSize()
	w.size = common.Size{Width: fbWidth, Height: fbHeight}
	return nil
}

func glfwState(w *engineWindow) *glfwWindow {
	gw, _ := w.internalWindow.(*glfwWindow)
	if gw == nil || gw.closed {
		return nil
	}
	return gw
}

// platformSurface creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformSurface(w *engineWindow) any {
	gw := glfwState(w)
	if gw == nil {
		return nil
	}
	if gw.surface == nil {
		gw.surface = wgpuglfw.GetSurfaceDescriptor(gw.window)
	}
	return gw.surface
}

func platformIsCloseRequested(w *engineWindow) bool {
	gw := glfwState(w)
	return gw == nil || gw.window.ShouldClose()
}

// platformUpdate polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformUpdate(w *engineWindow) {
	if glfwState(w) != nil {
		glfw.PollEvents()
	}
}

func platformSetTitle(w *engineWindow, title string) {
	if gw := glfwState(w); gw != nil {
		gw.window.SetTitle(title)
	}
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
func platformCloseWindow(w *engineWindow) error {
	gw := glfwState(w)
	if gw == nil {
		return errors.New("window is not open")
	}
	gw.closed = true
	gw.surface = nil
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}
