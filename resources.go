package halmark

import (
	"fmt"

	"github.com/gekko3d/halmark/hal"
)

// resourceSet owns every long-lived GPU object the bunnymark needs: the
// two bind group layouts, the pipeline, the sprite texture and sampler,
// the globals buffer and the ring of per-frame local buffers.
type resourceSet struct {
	capacity int
	stride   uint32

	shader         hal.ShaderModule
	globalLayout   hal.BindGroupLayout
	localLayout    hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.RenderPipeline

	texture     hal.Texture
	textureView hal.TextureView
	sampler     hal.Sampler

	globalBuffer hal.Buffer
	globalGroup  hal.BindGroup

	localBuffers [frameGenerations]hal.Buffer
	localGroups  [frameGenerations]hal.BindGroup
}

func newResourceSet(device hal.Device, surfaceFormat hal.TextureFormat, width, height uint32, shader ShaderAsset, sprite TextureAsset, capacity int) (*resourceSet, error) {
	rs := &resourceSet{
		capacity: capacity,
		stride:   localsStride(device.Limits().MinUniformBufferOffsetAlignment),
	}

	var err error
	rs.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: shader.Name(),
		WGSL:  shader.Listing(),
	})
	if err != nil {
		return nil, fmt.Errorf("shader module: %w", err)
	}

	rs.globalLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "global",
		Entries: []hal.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: hal.ShaderStageVertex,
				Buffer:     &hal.BufferBindingLayout{MinBindingSize: globalsSize},
			},
			{
				Binding:    1,
				Visibility: hal.ShaderStageFragment,
				Texture:    &hal.TextureBindingLayout{},
			},
			{
				Binding:    2,
				Visibility: hal.ShaderStageFragment,
				Sampler:    &hal.SamplerBindingLayout{Filtering: true},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("global layout: %w", err)
	}

	rs.localLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "local",
		Entries: []hal.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: hal.ShaderStageVertex,
				Buffer: &hal.BufferBindingLayout{
					HasDynamicOffset: true,
					MinBindingSize:   localsSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("local layout: %w", err)
	}

	rs.pipelineLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "bunnymark",
		BindGroupLayouts: []hal.BindGroupLayout{rs.globalLayout, rs.localLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout: %w", err)
	}

	rs.pipeline, err = device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:    "bunnymark",
		Layout:   rs.pipelineLayout,
		Vertex:   hal.ProgrammableStage{Module: rs.shader, EntryPoint: "vs_main"},
		Fragment: hal.ProgrammableStage{Module: rs.shader, EntryPoint: "fs_main"},
		Topology: hal.PrimitiveTopologyTriangleStrip,
		Targets: []hal.ColorTargetState{
			{Format: surfaceFormat, Blend: &hal.BlendStateAlpha},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render pipeline: %w", err)
	}

	texW, texH := sprite.Size()
	rs.texture, err = device.CreateTexture(&hal.TextureDescriptor{
		Label:  "sprite",
		Size:   hal.Extent{Width: texW, Height: texH},
		Format: hal.TextureFormatRGBA8UnormSrgb,
		Usage:  hal.TextureUsageCopyDst | hal.TextureUsageSampled,
	})
	if err != nil {
		return nil, fmt.Errorf("sprite texture: %w", err)
	}
	rs.textureView, err = device.CreateTextureView(rs.texture, &hal.TextureViewDescriptor{Label: "sprite"})
	if err != nil {
		return nil, fmt.Errorf("sprite view: %w", err)
	}

	rs.sampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:     "sprite",
		MagFilter: hal.FilterModeLinear,
		MinFilter: hal.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	rs.globalBuffer, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "globals",
		Size:  globalsSize,
		Usage: hal.BufferUsageMapWrite | hal.BufferUsageUniform,
	})
	if err != nil {
		return nil, fmt.Errorf("globals buffer: %w", err)
	}
	if err := rs.writeGlobals(device, width, height); err != nil {
		return nil, err
	}

	rs.globalGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "global",
		Layout: rs.globalLayout,
		Entries: []hal.BindGroupEntry{
			{Binding: 0, Buffer: rs.globalBuffer, Size: globalsSize},
			{Binding: 1, TextureView: rs.textureView},
			{Binding: 2, Sampler: rs.sampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("global bind group: %w", err)
	}

	localSize := uint64(capacity) * uint64(rs.stride)
	for gen := range rs.localBuffers {
		rs.localBuffers[gen], err = device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("locals-%d", gen),
			Size:  localSize,
			Usage: hal.BufferUsageMapWrite | hal.BufferUsageUniform,
		})
		if err != nil {
			return nil, fmt.Errorf("locals buffer %d: %w", gen, err)
		}
		rs.localGroups[gen], err = device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  fmt.Sprintf("local-%d", gen),
			Layout: rs.localLayout,
			Entries: []hal.BindGroupEntry{
				{Binding: 0, Buffer: rs.localBuffers[gen], Size: localsSize},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("local bind group %d: %w", gen, err)
		}
	}

	return rs, nil
}

// writeGlobals rewrites the projection for the given extent. Called once
// at startup and again whenever the window resizes.
func (rs *resourceSet) writeGlobals(device hal.Device, width, height uint32) error {
	data, err := device.MapBuffer(rs.globalBuffer, 0, globalsSize)
	if err != nil {
		return fmt.Errorf("map globals: %w", err)
	}
	copy(data, globalsBytes(Globals{
		Mvp:  projection(float32(width), float32(height)),
		Size: [2]float32{BunnySize, BunnySize},
	}))
	if err := device.UnmapBuffer(rs.globalBuffer); err != nil {
		return fmt.Errorf("unmap globals: %w", err)
	}
	return nil
}

// offsetFor is the dynamic offset of instance i in a local buffer. The
// result is a stride multiple by construction; the check guards against
// a stride that was never aligned.
func (rs *resourceSet) offsetFor(i int, alignment uint32) uint32 {
	offset := uint32(i) * rs.stride
	if offset%alignment != 0 {
		panic(fmt.Sprintf("dynamic offset %d not aligned to %d", offset, alignment))
	}
	return offset
}

func (rs *resourceSet) destroy(device hal.Device) {
	for gen := range rs.localBuffers {
		if rs.localBuffers[gen] != nil {
			device.DestroyBuffer(rs.localBuffers[gen])
		}
	}
	if rs.globalBuffer != nil {
		device.DestroyBuffer(rs.globalBuffer)
	}
	if rs.texture != nil {
		device.DestroyTexture(rs.texture)
	}
}
