package hal

import "errors"

var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("hal: backend not available")

	// ErrSurfaceLost means the surface became invalid and cannot present.
	ErrSurfaceLost = errors.New("hal: surface lost")

	// ErrAcquireTimeout means no swapchain image became available in time.
	ErrAcquireTimeout = errors.New("hal: surface acquire timed out")

	// ErrDeviceLost means the device stopped responding; all resources
	// created from it are invalid.
	ErrDeviceLost = errors.New("hal: device lost")

	// ErrBufferNotMapped is returned by UnmapBuffer without a live mapping.
	ErrBufferNotMapped = errors.New("hal: buffer not mapped")
)
