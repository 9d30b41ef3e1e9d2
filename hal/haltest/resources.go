package haltest

import "github.com/gekko3d/halmark/hal"

type Buffer struct {
	Label     string
	Data      []byte
	Usage     hal.BufferUsage
	State     hal.BufferUsage
	Mapped    bool
	Unmaps    int
	Destroyed bool
}

type Texture struct {
	Label     string
	Size      hal.Extent
	Format    hal.TextureFormat
	Data      []byte
	State     hal.TextureUsage
	Destroyed bool
}

type TextureView struct {
	Of *Texture
}

type Sampler struct {
	Label string
}

type ShaderModule struct {
	Label string
	WGSL  string
}

type BindGroupLayout struct {
	Desc hal.BindGroupLayoutDescriptor
}

type BindGroup struct {
	Desc   hal.BindGroupDescriptor
	Layout *BindGroupLayout
}

type PipelineLayout struct {
	Desc hal.PipelineLayoutDescriptor
}

type RenderPipeline struct {
	Desc hal.RenderPipelineDescriptor
}

type Fence struct {
	Value     uint64
	Destroyed bool
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
