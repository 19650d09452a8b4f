// Package browser dispatches the gpu backend contract to the browser's navigator.gpu through
// syscall/js. The dispatcher itself builds only for js/wasm; descriptor translation is shared
// with other platforms so it can be tested anywhere.
package browser

import "github.com/Carmen-Shannon/oxy-gpu/engine/gpu"

// Name is the registry name of the backend.
const Name = gpu.BackendBrowser

// support reports the browser's answer for a feature. WebGPU in the browser accepts only
// WGSL and has no API tracing.
func support(feature gpu.Feature) gpu.Support {
	switch feature {
	case gpu.FeatureSPIRVShaders, gpu.FeatureTracePath:
		return gpu.UnsupportedByDesign
	default:
		return gpu.Supported
	}
}
