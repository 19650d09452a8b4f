package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gpu/engine/gpu/backend/headless"
)

type testSurface struct {
	size common.Size
}

func (s *testSurface) Surface() any      { return s }
func (s *testSurface) Size() common.Size { return s.size }

func newDevice(t *testing.T) (*gpu.Device, *headless.Backend) {
	t.Helper()
	t.Setenv(gpu.EnvTracePath, "")
	b := headless.New(headless.WithSynchronousCallbacks())
	a, err := gpu.NewInstance(b).RequestAdapter(context.Background(), nil)
	require.NoError(t, err)
	d, err := a.RequestDevice(context.Background(), nil)
	require.NoError(t, err)
	return d, b
}

func clearFrame(t *testing.T, dev *gpu.Device) func(view *gpu.TextureView) error {
	return func(view *gpu.TextureView) error {
		enc, err := dev.CreateCommandEncoder(nil)
		require.NoError(t, err)
		pass, err := enc.BeginRenderPass(&gpu.RenderPassDescriptor{
			ColorAttachments: []gpu.RenderPassColorAttachment{{View: view, LoadOp: gpu.LoadOpClear}},
		})
		require.NoError(t, err)
		require.NoError(t, pass.End())
		cb, err := enc.Finish()
		require.NoError(t, err)
		return dev.Queue().Submit(cb)
	}
}

func TestPresenterFrames(t *testing.T) {
	dev, b := newDevice(t)
	surface := &testSurface{size: common.Size{Width: 4, Height: 4}}

	p, err := NewPresenter(dev, surface, nil)
	require.NoError(t, err)
	first := p.SwapChain()
	require.NotNil(t, first)

	require.NoError(t, p.Frame(clearFrame(t, dev)))
	require.NoError(t, p.Frame(clearFrame(t, dev)))
	assert.Same(t, first, p.SwapChain())
	assert.Equal(t, 2, b.Presented())
}

func TestPresenterRecreatesOnResize(t *testing.T) {
	dev, b := newDevice(t)
	surface := &testSurface{size: common.Size{Width: 4, Height: 4}}

	p, err := NewPresenter(dev, surface, &gpu.SwapChainDescriptor{Format: gpu.TextureFormatRGBA8Unorm})
	require.NoError(t, err)
	first := p.SwapChain()

	surface.size = common.Size{Width: 8, Height: 2}
	require.NoError(t, p.Frame(clearFrame(t, dev)))

	assert.NotSame(t, first, p.SwapChain())
	assert.Equal(t, common.Size{Width: 8, Height: 2}, p.SwapChain().Size())
	assert.Equal(t, gpu.TextureFormatRGBA8Unorm, p.SwapChain().Descriptor().Format)
	assert.Equal(t, 1, b.Presented())

	_, err = first.CurrentTextureView()
	assert.ErrorIs(t, err, gpu.ErrInvalidState)
}

func TestPresenterSkipsZeroSize(t *testing.T) {
	dev, b := newDevice(t)
	surface := &testSurface{}

	p, err := NewPresenter(dev, surface, nil)
	require.NoError(t, err)
	assert.Nil(t, p.SwapChain())

	called := false
	require.NoError(t, p.Frame(func(*gpu.TextureView) error {
		called = true
		return nil
	}))
	assert.False(t, called)
	assert.Zero(t, b.Presented())

	surface.size = common.Size{Width: 2, Height: 2}
	require.NoError(t, p.Frame(clearFrame(t, dev)))
	assert.NotNil(t, p.SwapChain())
	assert.Equal(t, 1, b.Presented())
}

func TestPresenterFrameError(t *testing.T) {
	dev, b := newDevice(t)
	surface := &testSurface{size: common.Size{Width: 2, Height: 2}}
	p, err := NewPresenter(dev, surface, nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	var seen *gpu.TextureView
	err = p.Frame(func(view *gpu.TextureView) error {
		seen = view
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, b.Presented())

	require.NoError(t, p.Frame(func(view *gpu.TextureView) error {
		assert.Same(t, seen, view)
		return clearFrame(t, dev)(view)
	}))
	assert.Equal(t, 1, b.Presented())
}

func TestNewPresenterNilArguments(t *testing.T) {
	dev, _ := newDevice(t)
	_, err := NewPresenter(nil, &testSurface{}, nil)
	assert.ErrorIs(t, err, gpu.ErrNilResource)
	_, err = NewPresenter(dev, nil, nil)
	assert.ErrorIs(t, err, gpu.ErrNilResource)
}
