//go:build !js

package engine

import "time"

func (e *engine) loop(frame func(dt float32) error) error {
	last := time.Now()
	for !e.window.IsCloseRequested() && !e.quitting() {
		start := time.Now()
		dt := float32(start.Sub(last).Seconds())
		last = start

		if err := e.step(frame, dt); err != nil {
			return err
		}

		if e.frameLimit > 0 {
			if remaining := e.frameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	return nil
}
