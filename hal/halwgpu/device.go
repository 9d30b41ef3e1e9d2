package halwgpu

import (
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/halmark/hal"
)

// uniformAlignment is the dynamic uniform offset alignment this backend
// reports. WebGPU guarantees the device requirement never exceeds 256, so
// aligning to 256 is valid everywhere.
const uniformAlignment = 256

type Device struct {
	dev   *wgpu.Device
	queue *wgpu.Queue
}

type Buffer struct {
	buf *wgpu.Buffer
	// shadow backs emulated mapping; non-nil only between map and unmap.
	shadow       []byte
	shadowOffset uint64
}

type Texture struct {
	tex    *wgpu.Texture
	format hal.TextureFormat
}

type TextureView struct{ view *wgpu.TextureView }
type Sampler struct{ sampler *wgpu.Sampler }
type ShaderModule struct{ module *wgpu.ShaderModule }
type BindGroupLayout struct{ layout *wgpu.BindGroupLayout }
type BindGroup struct{ group *wgpu.BindGroup }
type PipelineLayout struct{ layout *wgpu.PipelineLayout }
type RenderPipeline struct{ pipeline *wgpu.RenderPipeline }

// Fence tracks submission completion. WebGPU exposes no user fence
// object; waiting polls the device until queued work drains.
type Fence struct {
	pending  uint64
	signaled uint64
}

func (*Buffer) IsBuffer()                   {}
func (*Texture) IsTexture()                 {}
func (*TextureView) IsTextureView()         {}
func (*Sampler) IsSampler()                 {}
func (*ShaderModule) IsShaderModule()       {}
func (*BindGroupLayout) IsBindGroupLayout() {}
func (*BindGroup) IsBindGroup()             {}
func (*PipelineLayout) IsPipelineLayout()   {}
func (*RenderPipeline) IsRenderPipeline()   {}
func (*Fence) IsFence()                     {}

func (d *Device) Limits() hal.Limits {
	return hal.Limits{
		MinUniformBufferOffsetAlignment: uniformAlignment,
		MaxTextureDimension2D:           8192,
	}
}

func (d *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	module, err := d.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.WGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create shader module %q: %w", desc.Label, err)
	}
	return &ShaderModule{module: module}, nil
}

func toWgpuBufferUsage(u hal.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&hal.BufferUsageMapWrite != 0 {
		// Mapping is emulated with queue writes, which need CopyDst.
		out |= wgpu.BufferUsageCopyDst
	}
	if u&hal.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&hal.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&hal.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	return out
}

func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	buf, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toWgpuBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create buffer %q: %w", desc.Label, err)
	}
	return &Buffer{buf: buf}, nil
}

func (d *Device) MapBuffer(hb hal.Buffer, offset, size uint64) ([]byte, error) {
	b := hb.(*Buffer)
	if b.shadow != nil {
		return nil, fmt.Errorf("halwgpu: buffer already mapped")
	}
	b.shadow = make([]byte, size)
	b.shadowOffset = offset
	return b.shadow, nil
}

func (d *Device) UnmapBuffer(hb hal.Buffer) error {
	b := hb.(*Buffer)
	if b.shadow == nil {
		return hal.ErrBufferNotMapped
	}
	err := d.queue.WriteBuffer(b.buf, b.shadowOffset, b.shadow)
	b.shadow = nil
	if err != nil {
		return fmt.Errorf("halwgpu: flush mapped range: %w", err)
	}
	return nil
}

func (d *Device) DestroyBuffer(hb hal.Buffer) {
	hb.(*Buffer).buf.Release()
}

func (d *Device) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	mips := desc.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	var usage wgpu.TextureUsage
	if desc.Usage&hal.TextureUsageCopyDst != 0 {
		usage |= wgpu.TextureUsageCopyDst
	}
	if desc.Usage&hal.TextureUsageCopySrc != 0 {
		usage |= wgpu.TextureUsageCopySrc
	}
	if desc.Usage&hal.TextureUsageSampled != 0 {
		usage |= wgpu.TextureUsageTextureBinding
	}
	if desc.Usage&hal.TextureUsageColorTarget != 0 {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	tex, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        toWgpuFormat(desc.Format),
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create texture %q: %w", desc.Label, err)
	}
	return &Texture{tex: tex, format: desc.Format}, nil
}

func (d *Device) CreateTextureView(ht hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	view, err := ht.(*Texture).tex.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create texture view: %w", err)
	}
	return &TextureView{view: view}, nil
}

func (d *Device) DestroyTexture(ht hal.Texture) {
	ht.(*Texture).tex.Release()
}

func toWgpuFilter(f hal.FilterMode) wgpu.FilterMode {
	if f == hal.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func toWgpuAddressMode(m hal.AddressMode) wgpu.AddressMode {
	switch m {
	case hal.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case hal.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	}
	return wgpu.AddressModeClampToEdge
}

func (d *Device) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	sampler, err := d.dev.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toWgpuAddressMode(desc.AddressModeU),
		AddressModeV:  toWgpuAddressMode(desc.AddressModeV),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     toWgpuFilter(desc.MagFilter),
		MinFilter:     toWgpuFilter(desc.MinFilter),
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create sampler %q: %w", desc.Label, err)
	}
	return &Sampler{sampler: sampler}, nil
}

func (d *Device) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		var visibility wgpu.ShaderStage
		if e.Visibility&hal.ShaderStageVertex != 0 {
			visibility |= wgpu.ShaderStageVertex
		}
		if e.Visibility&hal.ShaderStageFragment != 0 {
			visibility |= wgpu.ShaderStageFragment
		}
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: visibility,
		}
		switch {
		case e.Buffer != nil:
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: e.Buffer.HasDynamicOffset,
				MinBindingSize:   e.Buffer.MinBindingSize,
			}
		case e.Texture != nil:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
				Multisampled:  e.Texture.Multisampled,
			}
		case e.Sampler != nil:
			entry.Sampler = wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			}
		default:
			return nil, fmt.Errorf("halwgpu: layout %q binding %d has no binding type", desc.Label, e.Binding)
		}
		entries = append(entries, entry)
	}
	layout, err := d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create bind group layout %q: %w", desc.Label, err)
	}
	return &BindGroupLayout{layout: layout}, nil
}

func (d *Device) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			entry.Buffer = e.Buffer.(*Buffer).buf
			entry.Offset = e.Offset
			if e.Size != 0 {
				entry.Size = e.Size
			} else {
				entry.Size = wgpu.WholeSize
			}
		case e.TextureView != nil:
			entry.TextureView = e.TextureView.(*TextureView).view
			entry.Size = wgpu.WholeSize
		case e.Sampler != nil:
			entry.Sampler = e.Sampler.(*Sampler).sampler
			entry.Size = wgpu.WholeSize
		}
		entries = append(entries, entry)
	}
	group, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout.(*BindGroupLayout).layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create bind group %q: %w", desc.Label, err)
	}
	return &BindGroup{group: group}, nil
}

func (d *Device) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, 0, len(desc.BindGroupLayouts))
	for _, l := range desc.BindGroupLayouts {
		layouts = append(layouts, l.(*BindGroupLayout).layout)
	}
	layout, err := d.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create pipeline layout %q: %w", desc.Label, err)
	}
	return &PipelineLayout{layout: layout}, nil
}

func toWgpuBlendFactor(f hal.BlendFactor) wgpu.BlendFactor {
	switch f {
	case hal.BlendFactorZero:
		return wgpu.BlendFactorZero
	case hal.BlendFactorOne:
		return wgpu.BlendFactorOne
	case hal.BlendFactorSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case hal.BlendFactorOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	}
	return wgpu.BlendFactorOne
}

func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	targets := make([]wgpu.ColorTargetState, 0, len(desc.Targets))
	for _, t := range desc.Targets {
		target := wgpu.ColorTargetState{
			Format:    toWgpuFormat(t.Format),
			WriteMask: wgpu.ColorWriteMaskAll,
		}
		if t.Blend != nil {
			target.Blend = &wgpu.BlendState{
				Color: wgpu.BlendComponent{
					SrcFactor: toWgpuBlendFactor(t.Blend.Color.SrcFactor),
					DstFactor: toWgpuBlendFactor(t.Blend.Color.DstFactor),
					Operation: wgpu.BlendOperationAdd,
				},
				Alpha: wgpu.BlendComponent{
					SrcFactor: toWgpuBlendFactor(t.Blend.Alpha.SrcFactor),
					DstFactor: toWgpuBlendFactor(t.Blend.Alpha.DstFactor),
					Operation: wgpu.BlendOperationAdd,
				},
			}
		}
		targets = append(targets, target)
	}

	topology := wgpu.PrimitiveTopologyTriangleList
	if desc.Topology == hal.PrimitiveTopologyTriangleStrip {
		topology = wgpu.PrimitiveTopologyTriangleStrip
	}

	pipeline, err := d.dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: desc.Layout.(*PipelineLayout).layout,
		Vertex: wgpu.VertexState{
			Module:     desc.Vertex.Module.(*ShaderModule).module,
			EntryPoint: desc.Vertex.EntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     desc.Fragment.Module.(*ShaderModule).module,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology: topology,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create render pipeline %q: %w", desc.Label, err)
	}
	return &RenderPipeline{pipeline: pipeline}, nil
}

func (d *Device) CreateCommandBuffer(desc *hal.CommandBufferDescriptor) (hal.CommandBuffer, error) {
	encoder, err := d.dev.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("halwgpu: create command encoder: %w", err)
	}
	return &CommandBuffer{dev: d, encoder: encoder, label: desc.Label}, nil
}

func (d *Device) CreateFence() (hal.Fence, error) {
	return &Fence{}, nil
}

func (d *Device) Wait(hf hal.Fence, value uint64, timeout time.Duration) error {
	f := hf.(*Fence)
	if f.signaled >= value {
		return nil
	}
	if f.pending < value {
		return fmt.Errorf("halwgpu: wait for fence value %d that was never submitted", value)
	}
	// Block until queued work drains.
	d.dev.Poll(true, nil)
	f.signaled = f.pending
	_ = timeout
	return nil
}

func (d *Device) DestroyFence(hf hal.Fence) {}
