//go:build js && wasm

package engine

import "syscall/js"

// loop re-arms requestAnimationFrame until the loop ends, and blocks the calling goroutine
// so the wasm program stays alive. The rAF timestamp is in milliseconds.
func (e *engine) loop(frame func(dt float32) error) error {
	done := make(chan error, 1)
	var last float64
	var tick js.Func
	tick = js.FuncOf(func(_ js.Value, args []js.Value) any {
		now := args[0].Float()
		var dt float32
		if last > 0 {
			dt = float32((now - last) / 1000)
		}
		last = now

		if e.window.IsCloseRequested() || e.quitting() {
			done <- nil
			return nil
		}
		if err := e.step(frame, dt); err != nil {
			done <- err
			return nil
		}
		js.Global().Call("requestAnimationFrame", tick)
		return nil
	})
	defer tick.Release()

	js.Global().Call("requestAnimationFrame", tick)
	return <-done
}
