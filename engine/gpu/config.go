package gpu

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by the package and its backends.
const (
	// EnvBackend names the backend OpenDefault selects, overriding the priority order.
	EnvBackend = "OXY_GPU_BACKEND"
	// EnvTracePath is the directory the native backend writes API traces to.
	EnvTracePath = "OXY_GPU_TRACE_PATH"
	// EnvLogLevel sets the wgpu-native log level (OFF, ERROR, WARN, INFO, DEBUG, TRACE).
	EnvLogLevel = "WGPU_LOG_LEVEL"
	// EnvForceFallbackAdapter forces a software adapter when set to a true value.
	EnvForceFallbackAdapter = "WGPU_FORCE_FALLBACK_ADAPTER"
)

// Config is the environment-provided configuration snapshot.
type Config struct {
	Backend              string
	TracePath            string
	LogLevel             string
	ForceFallbackAdapter bool
}

// ConfigFromEnv reads the current environment. It is called at the points where a value is
// consumed (backend selection, device acquisition) so the environment is read once per use.
//
// Returns:
//   - Config: the configuration currently present in the environment
func ConfigFromEnv() Config {
	force, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvForceFallbackAdapter)))
	return Config{
		Backend:              strings.ToLower(strings.TrimSpace(os.Getenv(EnvBackend))),
		TracePath:            strings.TrimSpace(os.Getenv(EnvTracePath)),
		LogLevel:             strings.ToUpper(strings.TrimSpace(os.Getenv(EnvLogLevel))),
		ForceFallbackAdapter: force,
	}
}
