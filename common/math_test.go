package common

import (
	"encoding/binary"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apply2D transforms the point (x, y, 0, 1) by the column-major matrix m.
func apply2D(m []float32, x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

// TestIdentity verifies Identity overwrites any previous contents.
func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}
	Identity(m)

	for i := range m {
		if i%5 == 0 {
			assert.Equal(t, float32(1), m[i], "diagonal %d", i)
		} else {
			assert.Equal(t, float32(0), m[i], "off-diagonal %d", i)
		}
	}
}

// TestMul4TranslateAfterScale verifies column-major composition order.
func TestMul4TranslateAfterScale(t *testing.T) {
	var scale, translate, out [16]float32
	Scaling(scale[:], 2, 3, 1)
	Translation(translate[:], 10, 20, 0)
	Mul4(out[:], translate[:], scale[:])

	x, y := apply2D(out[:], 1, 1)
	assert.Equal(t, float32(12), x)
	assert.Equal(t, float32(23), y)
}

// TestCropTransformFullTexture verifies a frame filling its allocation maps to identity.
func TestCropTransformFullTexture(t *testing.T) {
	var out, id [16]float32
	Identity(id[:])
	CropTransform(out[:], image.Rect(0, 0, 64, 32), 64, 32, false)
	assert.Equal(t, id, out)
}

// TestCropTransformPadded verifies the unit square lands on the visible corner of a padded allocation.
func TestCropTransformPadded(t *testing.T) {
	var out [16]float32
	CropTransform(out[:], image.Rect(0, 0, 48, 16), 64, 32, false)

	u, v := apply2D(out[:], 0, 0)
	assert.InDelta(t, 0, u, 1e-6)
	assert.InDelta(t, 0, v, 1e-6)

	u, v = apply2D(out[:], 1, 1)
	assert.InDelta(t, 0.75, u, 1e-6)
	assert.InDelta(t, 0.5, v, 1e-6)
}

// TestCropTransformFlipY verifies the V axis is mirrored inside the visible rectangle.
func TestCropTransformFlipY(t *testing.T) {
	var out [16]float32
	CropTransform(out[:], image.Rect(0, 0, 32, 16), 32, 32, true)

	_, v := apply2D(out[:], 0, 0)
	assert.InDelta(t, 0.5, v, 1e-6)

	_, v = apply2D(out[:], 0, 1)
	assert.InDelta(t, 0, v, 1e-6)
}

// TestCropTransformDegenerate verifies invalid inputs fall back to identity.
func TestCropTransformDegenerate(t *testing.T) {
	var id [16]float32
	Identity(id[:])

	cases := []struct {
		name    string
		visible image.Rectangle
		w, h    int
	}{
		{"zero width texture", image.Rect(0, 0, 4, 4), 0, 4},
		{"zero height texture", image.Rect(0, 0, 4, 4), 4, 0},
		{"empty visible", image.Rectangle{}, 4, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := [16]float32{9, 9, 9}
			CropTransform(out[:], tc.visible, tc.w, tc.h, false)
			assert.Equal(t, id, out)
		})
	}
}

// TestAspectFit verifies letterboxing keeps content inside clip space on the constrained axis.
func TestAspectFit(t *testing.T) {
	var out [16]float32

	// 2:1 content in a 1:1 view shrinks vertically.
	AspectFit(out[:], 200, 100, 400, 400)
	assert.InDelta(t, 1, out[0], 1e-6)
	assert.InDelta(t, 0.5, out[5], 1e-6)

	// 1:2 content in a 1:1 view shrinks horizontally.
	AspectFit(out[:], 100, 200, 400, 400)
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 1, out[5], 1e-6)

	AspectFit(out[:], 0, 200, 400, 400)
	assert.Equal(t, float32(1), out[0])
	assert.Equal(t, float32(1), out[5])
}

// TestSliceToBytes verifies the byte view covers every element and empty input yields nil.
func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))

	data := []float32{1, 2, 3}
	bytes := SliceToBytes(data)
	require.Len(t, bytes, 12)
	assert.Equal(t, math.Float32bits(2), binary.NativeEndian.Uint32(bytes[4:]))
}

func transformPoint(m []float32, p [3]float32) [4]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row]*p[0] + m[4+row]*p[1] + m[8+row]*p[2] + m[12+row]
	}
	return out
}

// TestPerspective verifies points on the near and far planes map to depth 0 and 1.
func TestPerspective(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], float32(math.Pi/2), 2, 0.1, 100)

	assert.InDelta(t, 0.5, proj[0], 1e-6)
	assert.InDelta(t, 1, proj[5], 1e-6)

	near := transformPoint(proj[:], [3]float32{0, 0, -0.1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-5)
	far := transformPoint(proj[:], [3]float32{0, 0, -100})
	assert.InDelta(t, 1, far[2]/far[3], 1e-5)
}

// TestLookAt verifies the target lands on the negative view axis and the eye at the origin.
func TestLookAt(t *testing.T) {
	var view [16]float32
	eye := [3]float32{1, 2, 3}
	LookAt(view[:], eye, [3]float32{1, 2, 0}, [3]float32{0, 1, 0})

	origin := transformPoint(view[:], eye)
	assert.InDelta(t, 0, origin[0], 1e-6)
	assert.InDelta(t, 0, origin[1], 1e-6)
	assert.InDelta(t, 0, origin[2], 1e-6)

	target := transformPoint(view[:], [3]float32{1, 2, 0})
	assert.InDelta(t, 0, target[0], 1e-6)
	assert.InDelta(t, 0, target[1], 1e-6)
	assert.InDelta(t, -3, target[2], 1e-6)

	// +X in world stays to the right when looking down -Z.
	right := transformPoint(view[:], [3]float32{2, 2, 0})
	assert.InDelta(t, 1, right[0], 1e-6)
}

// TestUVSphere verifies the grid size, unit radius, pole texture coordinates and index range.
func TestUVSphere(t *testing.T) {
	vertices, indices := UVSphere(50, 50)
	require.Len(t, vertices, 51*51*SphereVertexStride)
	require.Len(t, indices, 50*50*6)

	for i := 0; i < len(vertices); i += SphereVertexStride {
		p := [3]float32{vertices[i], vertices[i+1], vertices[i+2]}
		assert.InDelta(t, 1, math.Sqrt(float64(p[0]*p[0]+p[1]*p[1]+p[2]*p[2])), 1e-5)
	}

	// First vertex is the north pole at v = 0, last is the south pole at v = 1.
	assert.InDelta(t, 1, vertices[1], 1e-6)
	assert.Equal(t, float32(0), vertices[4])
	last := len(vertices) - SphereVertexStride
	assert.InDelta(t, -1, vertices[last+1], 1e-6)
	assert.Equal(t, float32(1), vertices[last+4])

	vertexCount := len(vertices) / SphereVertexStride
	for _, idx := range indices {
		assert.Less(t, int(idx), vertexCount)
	}
}

// TestUVSphereClampsSegments verifies degenerate segment counts still produce a closed mesh.
func TestUVSphereClampsSegments(t *testing.T) {
	vertices, indices := UVSphere(0, 0)
	assert.Len(t, vertices, 4*3*SphereVertexStride)
	assert.Len(t, indices, 3*2*6)
}
