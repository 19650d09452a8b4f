package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

func TestWindowDefaults(t *testing.T) {
	w := newEngineWindow()
	assert.Equal(t, "oxy-gpu", w.title)
	assert.Equal(t, "oxy-gpu", w.canvasID)
	assert.Equal(t, common.Size{Width: 1280, Height: 720}, w.Size())
	assert.Equal(t, glfwDontCare, w.minWidth)
	assert.Equal(t, glfwDontCare, w.maxHeight)
}

func TestWindowOptions(t *testing.T) {
	w := newEngineWindow(
		WithTitle("triangle"),
		WithCanvasID("view"),
		WithWidth(800),
		WithHeight(600),
		WithMinWidth(320),
		WithMinHeight(240),
		WithMaxWidth(1920),
		WithMaxHeight(1080),
	)
	assert.Equal(t, "triangle", w.title)
	assert.Equal(t, "view", w.canvasID)
	assert.Equal(t, common.Size{Width: 800, Height: 600}, w.Size())
	assert.Equal(t, []int{320, 240, 1920, 1080}, []int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
}

func TestResizedNotifiesOnChange(t *testing.T) {
	w := newEngineWindow(WithWidth(100), WithHeight(100))

	var got []common.Size
	w.SetResizeCallback(func(size common.Size) {
		got = append(got, size)
	})

	w.resized(common.Size{Width: 100, Height: 100})
	w.resized(common.Size{Width: 200, Height: 100})
	w.resized(common.Size{Width: 200, Height: 100})
	w.resized(common.Size{})

	assert.Equal(t, []common.Size{{Width: 200, Height: 100}, {}}, got)
	assert.True(t, w.Size().IsZero())
}

func TestUnopenedWindow(t *testing.T) {
	w := newEngineWindow()
	assert.True(t, w.IsCloseRequested())
	assert.Nil(t, w.Surface())
	assert.Error(t, w.Close())
	w.Update()
	w.SetTitle("renamed")
	assert.Equal(t, "renamed", w.title)
}
