// Package halwgpu implements the hal capability contract over WebGPU via
// github.com/cogentcore/webgpu, with GLFW windows as surface sources.
//
// WebGPU tracks resource states implicitly, so explicit transitions have
// no native equivalent here: the command buffer validates their ordering
// against its own shadow state and otherwise discards them. MapBuffer is
// emulated with a host shadow allocation flushed through the queue on
// unmap; the flush is the cache-maintenance step coherent devices skip.
package halwgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gekko3d/halmark/hal"
)

const BackendName = "wgpu"

func init() {
	hal.Register(BackendName, func() hal.Backend { return &Backend{} })
}

type Backend struct {
	instance *wgpu.Instance
}

func (b *Backend) Name() string { return BackendName }

func (b *Backend) CreateSurface(w hal.Window) (hal.Surface, error) {
	win, ok := w.(*glfw.Window)
	if !ok {
		return nil, fmt.Errorf("halwgpu: window must be *glfw.Window, got %T", w)
	}
	if b.instance == nil {
		b.instance = wgpu.CreateInstance(nil)
	}
	surface := b.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	return &Surface{surface: surface}, nil
}

func (b *Backend) OpenDevice(hs hal.Surface) (hal.Device, hal.Queue, error) {
	s, ok := hs.(*Surface)
	if !ok {
		return nil, nil, fmt.Errorf("halwgpu: surface from a different backend: %T", hs)
	}
	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: s.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("halwgpu: no suitable adapter: %w", err)
	}
	wdev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "halmark device",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("halwgpu: request device: %w", err)
	}
	queue := wdev.GetQueue()

	dev := &Device{dev: wdev, queue: queue}
	s.adapter = adapter
	s.device = dev
	return dev, &Queue{dev: dev, queue: queue}, nil
}

func (b *Backend) Close() {
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func toWgpuFormat(f hal.TextureFormat) wgpu.TextureFormat {
	switch f {
	case hal.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case hal.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case hal.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case hal.TextureFormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	}
	return wgpu.TextureFormatUndefined
}

func fromWgpuFormat(f wgpu.TextureFormat) hal.TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return hal.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return hal.TextureFormatRGBA8UnormSrgb
	case wgpu.TextureFormatBGRA8Unorm:
		return hal.TextureFormatBGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return hal.TextureFormatBGRA8UnormSrgb
	}
	return hal.TextureFormatUndefined
}

// PreferredFormat reports the first format the adapter supports for the
// surface, which is what the surface should be configured with.
func (s *Surface) PreferredFormat() hal.TextureFormat {
	if s.adapter == nil {
		return hal.TextureFormatBGRA8UnormSrgb
	}
	caps := s.surface.GetCapabilities(s.adapter)
	if len(caps.Formats) == 0 {
		return hal.TextureFormatBGRA8UnormSrgb
	}
	return fromWgpuFormat(caps.Formats[0])
}
