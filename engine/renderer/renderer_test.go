package renderer

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-video/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	configured    [][2]int
	binds         int
	writes        [][]byte
	draws         int
	sphereDraws   int
	sphereIndices int
	presentMode   PresentMode
	released      bool
}

func (f *fakeBackend) Device() *wgpu.Device { return nil }
func (f *fakeBackend) Queue() *wgpu.Queue { return nil }
func (f *fakeBackend) ConfigureSurface(width, height int) { f.configured = append(f.configured, [2]int{width, height}) }
func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.presentMode = mode }
func (f *fakeBackend) RegisterVideoPipeline() error { return nil }

func (f *fakeBackend) RegisterSpherePipeline(vertices []float32, indices []uint16) error {
	f.sphereIndices = len(indices)
	return nil
}

func (f *fakeBackend) BindVideoTexture(*wgpu.TextureView, *wgpu.Sampler) error {
	f.binds++
	return nil
}

func (f *fakeBackend) WriteVideoUniforms(data []byte) { f.writes = append(f.writes, data) }
func (f *fakeBackend) BeginFrame() error { return nil }
func (f *fakeBackend) DrawVideo() { f.draws++ }
func (f *fakeBackend) DrawVideoSphere() { f.sphereDraws++ }
func (f *fakeBackend) EndFrame() {}
func (f *fakeBackend) Present() {}
func (f *fakeBackend) Release() { f.released = true }

type fakeTexture struct {
	view       *wgpu.TextureView
	generation uint64
}

func (t *fakeTexture) TextureView() *wgpu.TextureView { return t.view }
func (t *fakeTexture) Sampler() *wgpu.Sampler { return nil }
func (t *fakeTexture) Generation() uint64 { return t.generation }

func newTestRenderer(t *testing.T, backend *fakeBackend, options ...RendererBuilderOption) *renderer {
	t.Helper()
	r := &renderer{mu: &sync.Mutex{}, logger: logrus.WithField("component", "renderer")}
	common.Identity(r.viewProjection[:])
	for _, opt := range options {
		opt(r)
	}
	require.NoError(t, r.init(backend, 200, 100))
	return r
}

func identity() [16]float32 {
	var m [16]float32
	common.Identity(m[:])
	return m
}

// TestRendererInit verifies the surface is configured and pending options reach the backend.
func TestRendererInit(t *testing.T) {
	backend := &fakeBackend{}
	newTestRenderer(t, backend, WithPresentMode(PresentModeUncapped))

	assert.Equal(t, [][2]int{{200, 100}}, backend.configured)
	assert.Equal(t, PresentModeUncapped, backend.presentMode)
}

// TestDrawVideoFrameWithoutTexture verifies nothing is drawn before the texture exists.
func TestDrawVideoFrameWithoutTexture(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)

	err := r.DrawVideoFrame(&fakeTexture{}, identity(), 16, 9)
	assert.ErrorIs(t, err, ErrNoVideoTexture)
	assert.Zero(t, backend.draws)
	assert.Zero(t, backend.binds)
}

// TestDrawVideoFrameRebindsOnGeneration verifies the bind group is only rebuilt when the texture changes.
func TestDrawVideoFrameRebindsOnGeneration(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)
	tex := &fakeTexture{view: &wgpu.TextureView{}, generation: 1}

	require.NoError(t, r.DrawVideoFrame(tex, identity(), 200, 100))
	require.NoError(t, r.DrawVideoFrame(tex, identity(), 200, 100))
	assert.Equal(t, 1, backend.binds)

	tex.generation = 2
	tex.view = &wgpu.TextureView{}
	require.NoError(t, r.DrawVideoFrame(tex, identity(), 200, 100))
	assert.Equal(t, 2, backend.binds)
	assert.Equal(t, 3, backend.draws)
}

// TestDrawVideoFrameUniformWrites verifies uniforms are written on change and after a resize.
func TestDrawVideoFrameUniformWrites(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)
	tex := &fakeTexture{view: &wgpu.TextureView{}, generation: 1}

	require.NoError(t, r.DrawVideoFrame(tex, identity(), 200, 100))
	require.NoError(t, r.DrawVideoFrame(tex, identity(), 200, 100))
	assert.Len(t, backend.writes, 1)

	crop := identity()
	crop[0] = 0.5
	require.NoError(t, r.DrawVideoFrame(tex, crop, 200, 100))
	assert.Len(t, backend.writes, 2)

	r.Resize(400, 100)
	require.NoError(t, r.DrawVideoFrame(tex, crop, 200, 100))
	require.Len(t, backend.writes, 3)

	// 2:1 content in a 4:1 view is pillarboxed to half the width.
	last := backend.writes[2]
	quadScaleX := math.Float32frombits(binary.LittleEndian.Uint32(last[64:]))
	assert.InDelta(t, 0.5, quadScaleX, 1e-6)
	texScaleX := math.Float32frombits(binary.LittleEndian.Uint32(last[0:]))
	assert.InDelta(t, 0.5, texScaleX, 1e-6)
}

// TestGPUVideoUniformsLayout verifies the uniform block matches the WGSL struct size.
func TestGPUVideoUniformsLayout(t *testing.T) {
	u := GPUVideoUniforms{}
	assert.Equal(t, 128, u.Size())
	assert.Len(t, u.Marshal(), 128)
	assert.Contains(t, VideoQuadShaderSource, "clipTransform: mat4x4<f32>")
	assert.Contains(t, VideoSphereShaderSource, "clipTransform: mat4x4<f32>")
}

// TestRendererRelease verifies release reaches the backend.
func TestRendererRelease(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)
	r.Release()
	assert.True(t, backend.released)
}

// TestRendererFlatSkipsSphere verifies the default projection neither uploads a mesh nor draws the sphere.
func TestRendererFlatSkipsSphere(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend)
	tex := &fakeTexture{view: &wgpu.TextureView{}, generation: 1}

	assert.Equal(t, ProjectionFlat, r.Projection())
	require.NoError(t, r.DrawVideoFrame(tex, identity(), 200, 100))
	assert.Zero(t, backend.sphereIndices)
	assert.Zero(t, backend.sphereDraws)
	assert.Equal(t, 1, backend.draws)
}

// TestRendererSphereProjection verifies the sphere mesh is registered, the camera matrix reaches the
// uniform block and the sphere pipeline draws instead of the quad.
func TestRendererSphereProjection(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(t, backend, WithProjection(ProjectionSphere))
	tex := &fakeTexture{view: &wgpu.TextureView{}, generation: 1}

	assert.Equal(t, sphereSegments*sphereSegments*6, backend.sphereIndices)

	viewProj := identity()
	viewProj[0] = 3
	r.SetViewProjection(viewProj)

	crop := identity()
	crop[5] = 0.75
	require.NoError(t, r.DrawVideoFrame(tex, crop, 200, 100))
	assert.Equal(t, 1, backend.sphereDraws)
	assert.Zero(t, backend.draws)

	require.Len(t, backend.writes, 1)
	data := backend.writes[0]
	assert.InDelta(t, 3, math.Float32frombits(binary.LittleEndian.Uint32(data[64:])), 1e-6)
	assert.InDelta(t, 0.75, math.Float32frombits(binary.LittleEndian.Uint32(data[20:])), 1e-6)

	// A camera turn rewrites the uniforms.
	viewProj[0] = 2
	r.SetViewProjection(viewProj)
	require.NoError(t, r.DrawVideoFrame(tex, crop, 200, 100))
	assert.Len(t, backend.writes, 2)
}

// TestParseProjection verifies flag spellings round-trip and unknown names fail.
func TestParseProjection(t *testing.T) {
	for _, p := range []Projection{ProjectionFlat, ProjectionSphere} {
		parsed, err := ParseProjection(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	_, err := ParseProjection("cube")
	assert.Error(t, err)
}
