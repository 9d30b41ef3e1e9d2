package halmark

import (
	"fmt"
	"time"

	"github.com/gekko3d/halmark/hal"
)

const uploadTimeout = 5 * time.Second

// uploadTexture pushes texels into a freshly created texture through a
// transient staging buffer, in one command buffer. The command order is
// a contract: the staging buffer must become a copy source and the
// texture a copy destination before the copy, and the texture must
// become sampleable after it. The staging buffer and fence are destroyed
// only once the GPU has signaled completion.
func uploadTexture(device hal.Device, queue hal.Queue, texture hal.Texture, texels []byte, width, height uint32) error {
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label:     "texture staging",
		Size:      uint64(len(texels)),
		Usage:     hal.BufferUsageMapWrite | hal.BufferUsageCopySrc,
		Transient: true,
	})
	if err != nil {
		return fmt.Errorf("staging buffer: %w", err)
	}

	data, err := device.MapBuffer(staging, 0, uint64(len(texels)))
	if err != nil {
		return fmt.Errorf("map staging: %w", err)
	}
	copy(data, texels)
	if err := device.UnmapBuffer(staging); err != nil {
		return fmt.Errorf("unmap staging: %w", err)
	}

	cmd, err := device.CreateCommandBuffer(&hal.CommandBufferDescriptor{Label: "upload"})
	if err != nil {
		return fmt.Errorf("upload command buffer: %w", err)
	}

	cmd.TransitionBuffers(hal.BufferBarrier{
		Buffer: staging,
		From:   hal.BufferUsageNone,
		To:     hal.BufferUsageCopySrc,
	})
	cmd.TransitionTextures(hal.TextureBarrier{
		Texture: texture,
		From:    hal.TextureUsageUninitialized,
		To:      hal.TextureUsageCopyDst,
	})
	cmd.CopyBufferToTexture(staging, texture, hal.BufferTextureCopy{
		BytesPerRow:  width * 4,
		RowsPerImage: height,
		Size:         hal.Extent{Width: width, Height: height},
	})
	cmd.TransitionTextures(hal.TextureBarrier{
		Texture: texture,
		From:    hal.TextureUsageCopyDst,
		To:      hal.TextureUsageSampled,
	})

	if err := cmd.Finish(); err != nil {
		return fmt.Errorf("finish upload: %w", err)
	}

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("upload fence: %w", err)
	}
	if err := queue.Submit(cmd, fence, 1); err != nil {
		return fmt.Errorf("submit upload: %w", err)
	}
	if err := device.Wait(fence, 1, uploadTimeout); err != nil {
		return fmt.Errorf("wait for upload: %w", err)
	}

	device.DestroyBuffer(staging)
	device.DestroyFence(fence)
	return nil
}
