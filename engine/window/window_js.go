//go:build js && wasm

package window

import (
	"errors"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

// canvasWindow holds the browser canvas state.
type canvasWindow struct {
	canvas js.Value
	closed bool
}

// newPlatformWindow binds the canvas with the configured id, creating and appending one to
// the document body when the page has none.
func newPlatformWindow(w *engineWindow) error {
	document := js.Global().Get("document")
	if !document.Truthy() {
		return errors.New("no document")
	}

	canvas := document.Call("getElementById", w.canvasID)
	if !canvas.Truthy() {
		canvas = document.Call("createElement", "canvas")
		canvas.Set("id", w.canvasID)
		canvas.Get("style").Set("width", w.size.Width)
		canvas.Get("style").Set("height", w.size.Height)
		document.Get("body").Call("appendChild", canvas)
	}
	document.Set("title", w.title)

	w.internalWindow = &canvasWindow{canvas: canvas}
	if size := canvasSize(canvas); !size.IsZero() {
		w.size = size
	}
	return nil
}

// canvasSize is the drawable size: the CSS size scaled by the device pixel ratio.
func canvasSize(canvas js.Value) common.Size {
	ratio := js.Global().Get("devicePixelRatio").Float()
	if ratio <= 0 {
		ratio = 1
	}
	return common.Size{
		Width:  int(canvas.Get("clientWidth").Float() * ratio),
		Height: int(canvas.Get("clientHeight").Float() * ratio),
	}
}

func canvasState(w *engineWindow) *canvasWindow {
	cw, _ := w.internalWindow.(*canvasWindow)
	if cw == nil || cw.closed {
		return nil
	}
	return cw
}

func platformSurface(w *engineWindow) any {
	cw := canvasState(w)
	if cw == nil {
		return nil
	}
	return cw.canvas
}

// A page can not be closed by the program, so only Close ends the window.
func platformIsCloseRequested(w *engineWindow) bool {
	return canvasState(w) == nil
}

// platformUpdate picks up CSS layout changes. The browser has no event queue to pump.
func platformUpdate(w *engineWindow) {
	if cw := canvasState(w); cw != nil {
		w.resized(canvasSize(cw.canvas))
	}
}

func platformSetTitle(w *engineWindow, title string) {
	if canvasState(w) != nil {
		js.Global().Get("document").Set("title", title)
	}
}

func platformCloseWindow(w *engineWindow) error {
	cw := canvasState(w)
	if cw == nil {
		return errors.New("window is not open")
	}
	cw.closed = true
	return nil
}
