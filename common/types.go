package common

import "fmt"

// Size is the pixel size of a window or presentation surface.
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether either dimension is zero, as happens with a minimized window.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
