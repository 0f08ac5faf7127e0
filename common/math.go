package common

import (
	"image"
	"math"
	"unsafe"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Translation writes a translation matrix into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y, z: translation along each axis
func Translation(out []float32, x, y, z float32) {
	Identity(out)
	out[12], out[13], out[14] = x, y, z
}

// Scaling writes a non-uniform scale matrix into out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - x, y, z: scale factor along each axis
func Scaling(out []float32, x, y, z float32) {
	Identity(out)
	out[0], out[5], out[10] = x, y, z
}

// CropTransform builds the texture-coordinate transform that maps the unit square [0, 1]² onto the
// visible rectangle of a frame uploaded into the top-left corner of a larger texture allocation.
// When flipY is set, the V axis is mirrored inside the visible rectangle, which corrects producers
// that deliver rows bottom-up. A degenerate allocation or an empty visible rectangle yields identity.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - visible: the visible region of the frame in texels
//   - texWidth, texHeight: the size of the texture allocation in texels
//   - flipY: mirror the V axis
func CropTransform(out []float32, visible image.Rectangle, texWidth, texHeight int, flipY bool) {
	if texWidth <= 0 || texHeight <= 0 || visible.Empty() {
		Identity(out)
		return
	}

	sx := float32(visible.Dx()) / float32(texWidth)
	sy := float32(visible.Dy()) / float32(texHeight)
	tx := float32(visible.Min.X) / float32(texWidth)
	ty := float32(visible.Min.Y) / float32(texHeight)
	if flipY {
		ty = float32(visible.Max.Y) / float32(texHeight)
		sy = -sy
	}

	var scale, translate [16]float32
	Scaling(scale[:], sx, sy, 1)
	Translation(translate[:], tx, ty, 0)
	Mul4(out, translate[:], scale[:])
}

// AspectFit builds a clip-space scale matrix that letterboxes content of the given size into a
// viewport while preserving the content aspect ratio. Degenerate sizes yield identity.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - contentWidth, contentHeight: the size of the content in pixels
//   - viewWidth, viewHeight: the size of the viewport in pixels
func AspectFit(out []float32, contentWidth, contentHeight, viewWidth, viewHeight int) {
	if contentWidth <= 0 || contentHeight <= 0 || viewWidth <= 0 || viewHeight <= 0 {
		Identity(out)
		return
	}

	contentAspect := float32(contentWidth) / float32(contentHeight)
	viewAspect := float32(viewWidth) / float32(viewHeight)
	if contentAspect > viewAspect {
		Scaling(out, 1, viewAspect/contentAspect, 1)
		return
	}
	Scaling(out, contentAspect/viewAspect, 1, 1)
}

// Perspective writes a right-handed perspective projection into out, mapping depth to [0, 1] as
// WebGPU expects.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport width divided by height
//   - near, far: clip plane distances
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// LookAt writes a right-handed view matrix into out for an eye looking at center.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: the viewer position
//   - center: the point looked at
//   - up: the world up direction
func LookAt(out []float32, eye, center, up [3]float32) {
	z := normalize3([3]float32{eye[0] - center[0], eye[1] - center[1], eye[2] - center[2]})
	x := normalize3(cross3(up, z))
	y := cross3(z, x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -dot3(x, eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -dot3(y, eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -dot3(z, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// normalize3 returns v unchanged when it has zero length.
func normalize3(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(dot3(v, v))))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
