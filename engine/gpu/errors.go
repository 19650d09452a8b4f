package gpu

import (
	"errors"
	"fmt"
)

// Sentinel errors. Everything the package returns wraps one of these, so callers can branch
// with errors.Is regardless of how much operation context was added on the way up.
var (
	// ErrInvalidState is the parent of every state machine violation.
	ErrInvalidState = errors.New("gpu: invalid state")

	ErrEncoderLocked         = fmt.Errorf("%w: command encoder has an open pass", ErrInvalidState)
	ErrEncoderFinished       = fmt.Errorf("%w: command encoder already finished", ErrInvalidState)
	ErrPassEnded             = fmt.Errorf("%w: pass encoder has ended", ErrInvalidState)
	ErrCommandBufferConsumed = fmt.Errorf("%w: command buffer already submitted", ErrInvalidState)
	ErrBufferNotMapped       = fmt.Errorf("%w: buffer is not mapped", ErrInvalidState)
	ErrBufferDestroyed       = fmt.Errorf("%w: buffer is destroyed", ErrInvalidState)

	ErrOutOfRange        = errors.New("gpu: range out of bounds")
	ErrCopyRange         = errors.New("gpu: invalid copy range")
	ErrNilDescriptor     = errors.New("gpu: nil descriptor")
	ErrInvalidDescriptor = errors.New("gpu: invalid descriptor")
	ErrNilResource       = errors.New("gpu: nil resource")
	ErrDeviceMismatch    = errors.New("gpu: resource belongs to a different device")
	ErrInvalidHandle     = errors.New("gpu: invalid handle")
	ErrNullHandle        = errors.New("gpu: backend returned a null handle")

	ErrAcquisition = errors.New("gpu: acquisition failed")

	ErrUnsupported    = errors.New("gpu: unsupported by backend")
	ErrNotImplemented = errors.New("gpu: not implemented by backend")

	ErrBackendNotAvailable = errors.New("gpu: backend not available")
)

// FeatureError reports a descriptor that needs a feature the active backend does not provide.
// Err is ErrNotImplemented or ErrUnsupported.
type FeatureError struct {
	Backend string
	Feature Feature
	Err     error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Feature, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// AcquisitionError reports a failed adapter or device request.
// It matches both ErrAcquisition and the underlying cause under errors.Is.
type AcquisitionError struct {
	Op  string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AcquisitionError) Unwrap() []error { return []error{ErrAcquisition, e.Err} }

// BackendError carries a failure reported by the native library or the browser runtime.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
