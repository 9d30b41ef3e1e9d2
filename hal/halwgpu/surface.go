package halwgpu

import (
	"fmt"
	"strings"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/halmark/hal"
)

type Surface struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *Device
	format  hal.TextureFormat
}

func (s *Surface) Configure(hd hal.Device, cfg *hal.SurfaceConfig) error {
	d, ok := hd.(*Device)
	if !ok {
		return fmt.Errorf("halwgpu: device from a different backend: %T", hd)
	}
	caps := s.surface.GetCapabilities(s.adapter)
	if len(caps.Formats) == 0 {
		return fmt.Errorf("halwgpu: surface reports no supported formats: %w", hal.ErrSurfaceLost)
	}
	format := toWgpuFormat(cfg.Format)
	supported := false
	for _, f := range caps.Formats {
		if f == format {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("halwgpu: surface does not support format %v", cfg.Format)
	}
	alpha, err := surfaceAlphaMode(caps.AlphaModes)
	if err != nil {
		return err
	}
	s.surface.Configure(s.adapter, d.dev, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   alpha,
	})
	s.format = cfg.Format
	return nil
}

func surfaceAlphaMode(modes []wgpu.CompositeAlphaMode) (wgpu.CompositeAlphaMode, error) {
	if len(modes) == 0 {
		return 0, fmt.Errorf("halwgpu: surface reports no alpha modes: %w", hal.ErrSurfaceLost)
	}
	return modes[0], nil
}

// Acquire blocks in the driver until an image is available; WebGPU offers
// no explicit timeout, so the argument only shapes the returned error.
func (s *Surface) Acquire(timeout time.Duration) (hal.SurfaceTexture, error) {
	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifyAcquireErr(err)
	}
	return &SurfaceTexture{tex: &Texture{tex: tex, format: s.format}}, nil
}

// classifyAcquireErr maps driver acquire failures onto the hal
// sentinels. The binding exposes wgpu-native's surface status only as
// error text, so this falls back to the status names wgpu-native prints
// (Lost, Outdated, Timeout); anything unrecognized passes through
// unclassified.
func classifyAcquireErr(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "lost"), strings.Contains(msg, "outdated"):
		return fmt.Errorf("%w: %v", hal.ErrSurfaceLost, err)
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %v", hal.ErrAcquireTimeout, err)
	}
	return fmt.Errorf("halwgpu: acquire: %w", err)
}

func (s *Surface) Unconfigure() {
	s.surface.Release()
}

type SurfaceTexture struct {
	tex *Texture
}

func (st *SurfaceTexture) Texture() hal.Texture { return st.tex }

func (st *SurfaceTexture) release() {
	// The swapchain owns the texture; present returns it.
}
