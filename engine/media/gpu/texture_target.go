package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/Carmen-Shannon/oxy-video/engine/media"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// defaultAlignment rounds texture sizes up to whole 16x16 macroblocks.
const defaultAlignment = 16

type textureTarget struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	label       string
	alignment   int
	flipY       bool
	samplerData common.SamplerStagingData
	logger      *logrus.Entry

	surfaces   atomic.Uint64
	newBackend func(label string) (textureBackend, error)
}

var _ media.TextureTarget = &textureTarget{}

// NewTextureTarget creates a media.TextureTarget that allocates wgpu-backed surfaces on device.
// Surfaces returned by NewSurface implement Surface.
//
// Parameters:
//   - device: the wgpu device textures and samplers are created on
//   - queue: the queue frame uploads are written through
//   - options: functional options for the target
//
// Returns:
//   - media.TextureTarget: the texture target
func NewTextureTarget(device *wgpu.Device, queue *wgpu.Queue, options ...TextureTargetBuilderOption) media.TextureTarget {
	t := &textureTarget{
		device:    device,
		queue:     queue,
		label:     "Video",
		alignment: defaultAlignment,
		logger:    logrus.WithField("component", "texture_target"),
	}
	for _, opt := range options {
		opt(t)
	}
	if t.newBackend == nil {
		t.newBackend = func(label string) (textureBackend, error) {
			if t.device == nil || t.queue == nil {
				return nil, ErrNoDevice
			}
			return newWGPUTextureBackend(t.device, t.queue, label, t.samplerData)
		}
	}
	return t
}

func (t *textureTarget) NewSurface() (media.RenderableSurface, error) {
	n := t.surfaces.Add(1)
	label := fmt.Sprintf("%s %d", t.label, n)

	backend, err := t.newBackend(label)
	if err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"function":  "NewSurface",
		"label":     label,
		"alignment": t.alignment,
		"flip_y":    t.flipY,
	}).Debug("Surface created")

	return newSurface(backend, t.alignment, t.flipY, t.logger.WithField("surface", label)), nil
}
