package haltest

import (
	"time"

	"github.com/gekko3d/halmark/hal"
)

// Surface is a scriptable swapchain. AcquireErrs is consumed one error per
// Acquire call; a nil entry (or an exhausted script) yields a fresh
// presentable texture.
type Surface struct {
	Config      hal.SurfaceConfig
	Configured  bool
	AcquireErrs []error
	Acquired    int
	Presented   int
	PresentErr  error
}

func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) PreferredFormat() hal.TextureFormat {
	return hal.TextureFormatRGBA8UnormSrgb
}

func (s *Surface) Configure(d hal.Device, cfg *hal.SurfaceConfig) error {
	s.Config = *cfg
	s.Configured = true
	return nil
}

func (s *Surface) Acquire(timeout time.Duration) (hal.SurfaceTexture, error) {
	var err error
	if len(s.AcquireErrs) > 0 {
		err = s.AcquireErrs[0]
		s.AcquireErrs = s.AcquireErrs[1:]
	}
	if err != nil {
		return nil, err
	}
	if !s.Configured {
		return nil, hal.ErrSurfaceLost
	}
	s.Acquired++
	tex := &Texture{
		Label:  "swapchain",
		Size:   hal.Extent{Width: s.Config.Width, Height: s.Config.Height},
		Format: s.Config.Format,
		Data:   make([]byte, uint64(s.Config.Width)*uint64(s.Config.Height)*uint64(s.Config.Format.BytesPerTexel())),
		State:  hal.TextureUsageUninitialized,
	}
	return &SurfaceTexture{Tex: tex}, nil
}

func (s *Surface) Unconfigure() {
	s.Configured = false
}

type SurfaceTexture struct {
	Tex *Texture
}

func (st *SurfaceTexture) Texture() hal.Texture { return st.Tex }
