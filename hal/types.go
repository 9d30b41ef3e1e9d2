package hal

// Window is the backend-opaque handle to a native window. Backends assert
// the concrete type they support; the wgpu backend expects *glfw.Window.
type Window any

type TextureFormat uint32

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
)

// BytesPerTexel returns the texel size of the format in bytes.
func (f TextureFormat) BytesPerTexel() uint32 {
	switch f {
	case TextureFormatRGBA8Unorm, TextureFormatRGBA8UnormSrgb,
		TextureFormatBGRA8Unorm, TextureFormatBGRA8UnormSrgb:
		return 4
	default:
		return 0
	}
}

// BufferUsage describes how a buffer is used. The zero value means the
// buffer has not been used yet; barriers transition between usages.
type BufferUsage uint32

const (
	BufferUsageNone     BufferUsage = 0
	BufferUsageMapWrite BufferUsage = 1 << iota
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageUniform
)

// TextureUsage describes how a texture is used. TextureUsageUninitialized
// is the state of a freshly created texture; a barrier out of it is
// required before the first real use.
type TextureUsage uint32

const (
	TextureUsageUninitialized TextureUsage = 0
	TextureUsageCopySrc       TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageSampled
	TextureUsageColorTarget
)

type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

type AddressMode uint32

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

type FilterMode uint32

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

type PrimitiveTopology uint32

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
)

type PresentMode uint32

const (
	// PresentModeFifo is vsync: frames queue behind the display refresh,
	// no tearing.
	PresentModeFifo PresentMode = iota
)

type LoadOp uint32

const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

type StoreOp uint32

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

type Color struct {
	R, G, B, A float64
}

type Extent struct {
	Width  uint32
	Height uint32
}

// Limits reports device capability values the application must respect.
type Limits struct {
	// MinUniformBufferOffsetAlignment is the required alignment of dynamic
	// uniform buffer offsets supplied at draw time.
	MinUniformBufferOffsetAlignment uint32
	MaxTextureDimension2D           uint32
}

type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
	// Transient marks staging memory that lives only for one submission.
	Transient bool
}

type TextureDescriptor struct {
	Label         string
	Size          Extent
	MipLevelCount uint32
	SampleCount   uint32
	Format        TextureFormat
	Usage         TextureUsage
}

type TextureViewDescriptor struct {
	Label  string
	Format TextureFormat
}

type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
}

// ShaderModuleDescriptor carries validated WGSL source. Validation is the
// caller's responsibility (the shading front end); backends treat the
// module as opaque.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

type BufferBindingLayout struct {
	// HasDynamicOffset makes the binding accept a per-draw byte offset
	// supplied in SetBindGroup.
	HasDynamicOffset bool
	// MinBindingSize is the guaranteed-visible size at any offset.
	MinBindingSize uint64
}

type TextureBindingLayout struct {
	Multisampled bool
}

type SamplerBindingLayout struct {
	Filtering bool
}

// BindGroupLayoutEntry declares one binding slot. Exactly one of Buffer,
// Texture or Sampler must be set.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Buffer     *BufferBindingLayout
	Texture    *TextureBindingLayout
	Sampler    *SamplerBindingLayout
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds a concrete resource to a layout slot. Exactly one
// of Buffer, TextureView or Sampler must be set. For buffer bindings Size
// limits the visible range; zero means the whole buffer.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	Offset      uint64
	Size        uint64
	TextureView TextureView
	Sampler     Sampler
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout
}

type ProgrammableStage struct {
	Module     ShaderModule
	EntryPoint string
}

type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Operation BlendOperation
}

type BlendFactor uint32

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
)

type BlendOperation uint32

const (
	BlendOperationAdd BlendOperation = iota
)

type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// BlendStateAlpha is standard alpha blending: src over dst.
var BlendStateAlpha = BlendState{
	Color: BlendComponent{
		SrcFactor: BlendFactorSrcAlpha,
		DstFactor: BlendFactorOneMinusSrcAlpha,
		Operation: BlendOperationAdd,
	},
	Alpha: BlendComponent{
		SrcFactor: BlendFactorOne,
		DstFactor: BlendFactorOne,
		Operation: BlendOperationAdd,
	},
}

type ColorTargetState struct {
	Format TextureFormat
	Blend  *BlendState
}

type RenderPipelineDescriptor struct {
	Label    string
	Layout   PipelineLayout
	Vertex   ProgrammableStage
	Fragment ProgrammableStage
	Topology PrimitiveTopology
	Targets  []ColorTargetState
}

type CommandBufferDescriptor struct {
	Label string
}

// BufferBarrier transitions a buffer between usages.
type BufferBarrier struct {
	Buffer Buffer
	From   BufferUsage
	To     BufferUsage
}

// TextureBarrier transitions a texture between usages.
type TextureBarrier struct {
	Texture Texture
	From    TextureUsage
	To      TextureUsage
}

// BufferTextureCopy describes one buffer-to-texture copy region.
type BufferTextureCopy struct {
	BufferOffset uint64
	BytesPerRow  uint32
	RowsPerImage uint32
	MipLevel     uint32
	Origin       [2]uint32
	Size         Extent
}

type ColorAttachment struct {
	View       TextureView
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue Color
}

type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []ColorAttachment
}

// SurfaceConfig describes the swapchain negotiated with the display.
type SurfaceConfig struct {
	Usage       TextureUsage
	Format      TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
	// ImageCount is the swapchain depth; 2 is double buffering.
	ImageCount uint32
}
