package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuTextureBackend struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	label  string

	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

var _ textureBackend = &wgpuTextureBackend{}

func newWGPUTextureBackend(device *wgpu.Device, queue *wgpu.Queue, label string, samplerStagingData common.SamplerStagingData) (textureBackend, error) {
	samp, err := device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	return &wgpuTextureBackend{
		device:  device,
		queue:   queue,
		label:   label,
		sampler: samp,
	}, nil
}

func (b *wgpuTextureBackend) Allocate(width, height uint32) error {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     b.label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}

	if b.view != nil {
		b.view.Release()
	}
	if b.texture != nil {
		b.texture.Release()
	}
	b.texture = tex
	b.view = view
	return nil
}

func (b *wgpuTextureBackend) Upload(frame *common.FrameStagingData) error {
	if b.texture == nil {
		return fmt.Errorf("no texture allocated")
	}
	if len(frame.Pixels) < frame.Width*frame.Height*4 {
		return fmt.Errorf("frame %d has %d bytes, want %d", frame.Sequence, len(frame.Pixels), frame.Width*frame.Height*4)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  b.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		frame.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(frame.Width * 4),
			RowsPerImage: uint32(frame.Height),
		},
		&wgpu.Extent3D{
			Width:              uint32(frame.Width),
			Height:             uint32(frame.Height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuTextureBackend) TextureView() *wgpu.TextureView {
	return b.view
}

func (b *wgpuTextureBackend) Sampler() *wgpu.Sampler {
	return b.sampler
}

func (b *wgpuTextureBackend) Release() {
	if b.view != nil {
		b.view.Release()
		b.view = nil
	}
	if b.texture != nil {
		b.texture.Release()
		b.texture = nil
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
}
