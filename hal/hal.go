package hal

import "time"

// Opaque resource handles. Backends supply the concrete types; holders
// must not retain them past the owning object's lifetime.
type (
	Buffer          interface{ IsBuffer() }
	Texture         interface{ IsTexture() }
	TextureView     interface{ IsTextureView() }
	Sampler         interface{ IsSampler() }
	ShaderModule    interface{ IsShaderModule() }
	BindGroupLayout interface{ IsBindGroupLayout() }
	BindGroup       interface{ IsBindGroup() }
	PipelineLayout  interface{ IsPipelineLayout() }
	RenderPipeline  interface{ IsRenderPipeline() }
	Fence           interface{ IsFence() }
)

// Backend is one concrete graphics API implementation. Backends register
// themselves by name via Register; Open selects one at startup.
type Backend interface {
	Name() string

	// CreateSurface wraps a native window into a presentable surface.
	CreateSurface(w Window) (Surface, error)

	// OpenDevice opens the first suitable adapter for the surface and
	// returns its device and queue. Empty adapter enumeration is an error.
	OpenDevice(s Surface) (Device, Queue, error)

	// Close releases backend-global state. Devices and surfaces must not
	// be used afterwards.
	Close()
}

// Device creates and destroys GPU resources. All methods are fallible;
// creation failures at startup are fatal to the application by policy,
// but the device itself only reports them.
type Device interface {
	Limits() Limits

	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)

	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	// MapBuffer exposes [offset, offset+size) of a MapWrite buffer as host
	// memory. The returned bytes are valid until UnmapBuffer.
	MapBuffer(b Buffer, offset, size uint64) ([]byte, error)
	// UnmapBuffer ends a mapping and flushes written bytes to the device,
	// including any cache maintenance non-coherent memory needs.
	UnmapBuffer(b Buffer) error
	DestroyBuffer(b Buffer)

	CreateTexture(desc *TextureDescriptor) (Texture, error)
	CreateTextureView(t Texture, desc *TextureViewDescriptor) (TextureView, error)
	DestroyTexture(t Texture)

	CreateSampler(desc *SamplerDescriptor) (Sampler, error)

	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)

	CreateCommandBuffer(desc *CommandBufferDescriptor) (CommandBuffer, error)

	CreateFence() (Fence, error)
	// Wait blocks until the fence reaches value or the timeout elapses.
	Wait(f Fence, value uint64, timeout time.Duration) error
	DestroyFence(f Fence)
}

// CommandBuffer records commands for one submission. Recording is
// single-threaded; a finished buffer is immutable.
type CommandBuffer interface {
	TransitionBuffers(barriers ...BufferBarrier)
	TransitionTextures(barriers ...TextureBarrier)
	CopyBufferToTexture(src Buffer, dst Texture, regions ...BufferTextureCopy)

	BeginRenderPass(desc *RenderPassDescriptor)
	EndRenderPass()
	SetPipeline(p RenderPipeline)
	// SetBindGroup binds a group at a pipeline-layout slot. dynamicOffsets
	// supplies one byte offset per dynamic binding in the group's layout;
	// each must be a multiple of Limits.MinUniformBufferOffsetAlignment.
	SetBindGroup(slot uint32, group BindGroup, dynamicOffsets []uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// Finish ends recording. The buffer can then be submitted once.
	Finish() error
}

// Queue submits finished command buffers and presents acquired surface
// textures.
type Queue interface {
	// Submit enqueues cb for execution. If fence is non-nil it is signaled
	// to value when the submission completes on the GPU.
	Submit(cb CommandBuffer, fence Fence, value uint64) error
	// Present hands the acquired texture back to the surface, returning
	// ownership to the presentation engine.
	Present(s Surface, t SurfaceTexture) error
}

// Surface is the negotiated swapchain. Acquire and Present form the frame
// boundary.
type Surface interface {
	// PreferredFormat reports the texture format the surface should be
	// configured with. Valid once a device has been opened against it.
	PreferredFormat() TextureFormat
	Configure(d Device, cfg *SurfaceConfig) error
	// Acquire blocks until a presentable texture is available. It returns
	// ErrAcquireTimeout when timeout elapses first and ErrSurfaceLost when
	// the surface became invalid.
	Acquire(timeout time.Duration) (SurfaceTexture, error)
	Unconfigure()
}

// SurfaceTexture is an acquired presentable image. It is valid from
// Acquire until the matching Present.
type SurfaceTexture interface {
	Texture() Texture
}
