// Package haltest is an in-memory hal backend for tests. Buffers are
// backed by real byte storage, every recorded command is kept for
// inspection, and submissions complete instantly. Surfaces can be
// scripted to fail acquisition.
package haltest

import (
	"fmt"
	"time"

	"github.com/gekko3d/halmark/hal"
)

const BackendName = "test"

// Backend implements hal.Backend. Device and queue are created eagerly so
// tests can reach them without going through OpenDevice.
type Backend struct {
	Dev *Device
	Q   *Queue
	Srf *Surface
}

func New() *Backend {
	dev := NewDevice()
	return &Backend{
		Dev: dev,
		Q:   &Queue{dev: dev},
		Srf: NewSurface(),
	}
}

func (b *Backend) Name() string { return BackendName }

func (b *Backend) CreateSurface(w hal.Window) (hal.Surface, error) {
	return b.Srf, nil
}

func (b *Backend) OpenDevice(s hal.Surface) (hal.Device, hal.Queue, error) {
	return b.Dev, b.Q, nil
}

func (b *Backend) Close() {}

// Device implements hal.Device over host memory.
type Device struct {
	Lim hal.Limits

	// Trace records coarse device-level events in order: map:<label>,
	// unmap:<label>, submit:<label>, destroy_buffer:<label>,
	// destroy_fence, wait. Command-level detail lives on CommandBuffer.
	Trace []string

	Buffers  []*Buffer
	Textures []*Texture
	Fences   []*Fence
}

func NewDevice() *Device {
	return &Device{
		Lim: hal.Limits{
			MinUniformBufferOffsetAlignment: 256,
			MaxTextureDimension2D:           8192,
		},
	}
}

func (d *Device) Limits() hal.Limits { return d.Lim }

func (d *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if desc.WGSL == "" {
		return nil, fmt.Errorf("haltest: empty shader source")
	}
	return &ShaderModule{Label: desc.Label, WGSL: desc.WGSL}, nil
}

func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("haltest: zero-sized buffer %q", desc.Label)
	}
	b := &Buffer{
		Label: desc.Label,
		Data:  make([]byte, desc.Size),
		Usage: desc.Usage,
	}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) MapBuffer(hb hal.Buffer, offset, size uint64) ([]byte, error) {
	b := hb.(*Buffer)
	if b.Destroyed {
		return nil, fmt.Errorf("haltest: map of destroyed buffer %q", b.Label)
	}
	if b.Usage&hal.BufferUsageMapWrite == 0 {
		return nil, fmt.Errorf("haltest: buffer %q is not MapWrite", b.Label)
	}
	if offset+size > uint64(len(b.Data)) {
		return nil, fmt.Errorf("haltest: map range [%d, %d) exceeds buffer %q size %d",
			offset, offset+size, b.Label, len(b.Data))
	}
	b.Mapped = true
	d.Trace = append(d.Trace, "map:"+b.Label)
	return b.Data[offset : offset+size], nil
}

func (d *Device) UnmapBuffer(hb hal.Buffer) error {
	b := hb.(*Buffer)
	if !b.Mapped {
		return hal.ErrBufferNotMapped
	}
	b.Mapped = false
	b.Unmaps++
	d.Trace = append(d.Trace, "unmap:"+b.Label)
	return nil
}

func (d *Device) DestroyBuffer(hb hal.Buffer) {
	b := hb.(*Buffer)
	b.Destroyed = true
	d.Trace = append(d.Trace, "destroy_buffer:"+b.Label)
}

func (d *Device) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("haltest: degenerate texture %q", desc.Label)
	}
	t := &Texture{
		Label:  desc.Label,
		Size:   desc.Size,
		Format: desc.Format,
		Data:   make([]byte, uint64(desc.Size.Width)*uint64(desc.Size.Height)*uint64(desc.Format.BytesPerTexel())),
		State:  hal.TextureUsageUninitialized,
	}
	d.Textures = append(d.Textures, t)
	return t, nil
}

func (d *Device) CreateTextureView(ht hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	return &TextureView{Of: ht.(*Texture)}, nil
}

func (d *Device) DestroyTexture(ht hal.Texture) {
	ht.(*Texture).Destroyed = true
}

func (d *Device) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	return &Sampler{Label: desc.Label}, nil
}

func (d *Device) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	for _, e := range desc.Entries {
		n := 0
		if e.Buffer != nil {
			n++
		}
		if e.Texture != nil {
			n++
		}
		if e.Sampler != nil {
			n++
		}
		if n != 1 {
			return nil, fmt.Errorf("haltest: layout %q binding %d must set exactly one binding type", desc.Label, e.Binding)
		}
	}
	cp := *desc
	return &BindGroupLayout{Desc: cp}, nil
}

func (d *Device) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	layout := desc.Layout.(*BindGroupLayout)
	if len(desc.Entries) != len(layout.Desc.Entries) {
		return nil, fmt.Errorf("haltest: bind group %q has %d entries, layout wants %d",
			desc.Label, len(desc.Entries), len(layout.Desc.Entries))
	}
	cp := *desc
	return &BindGroup{Desc: cp, Layout: layout}, nil
}

func (d *Device) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	cp := *desc
	return &PipelineLayout{Desc: cp}, nil
}

func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if desc.Vertex.Module == nil || desc.Fragment.Module == nil {
		return nil, fmt.Errorf("haltest: pipeline %q missing shader stage", desc.Label)
	}
	cp := *desc
	return &RenderPipeline{Desc: cp}, nil
}

func (d *Device) CreateCommandBuffer(desc *hal.CommandBufferDescriptor) (hal.CommandBuffer, error) {
	return &CommandBuffer{Label: desc.Label, dev: d}, nil
}

func (d *Device) CreateFence() (hal.Fence, error) {
	f := &Fence{}
	d.Fences = append(d.Fences, f)
	return f, nil
}

func (d *Device) Wait(hf hal.Fence, value uint64, timeout time.Duration) error {
	f := hf.(*Fence)
	d.Trace = append(d.Trace, "wait")
	if f.Value < value {
		return fmt.Errorf("haltest: fence stuck below %d after %v", value, timeout)
	}
	return nil
}

func (d *Device) DestroyFence(hf hal.Fence) {
	hf.(*Fence).Destroyed = true
	d.Trace = append(d.Trace, "destroy_fence")
}
