package common

import "math"

// SphereVertexStride is the number of float32 values per UV sphere vertex: position xyz then uv.
const SphereVertexStride = 5

// UVSphere builds a unit sphere as a latitude/longitude grid. Texture coordinates run u around the
// equator and v from the north pole (v = 0) to the south pole (v = 1), so an equirectangular frame
// maps onto the inside of the sphere without mirroring when viewed from the center.
//
// Parameters:
//   - segmentsX: number of longitude segments, at least 3
//   - segmentsY: number of latitude segments, at least 2
//
// Returns:
//   - []float32: interleaved vertices, SphereVertexStride floats each
//   - []uint16: triangle list indices
func UVSphere(segmentsX, segmentsY int) ([]float32, []uint16) {
	segmentsX = max(segmentsX, 3)
	segmentsY = max(segmentsY, 2)

	vertices := make([]float32, 0, (segmentsX+1)*(segmentsY+1)*SphereVertexStride)
	for y := 0; y <= segmentsY; y++ {
		v := float64(y) / float64(segmentsY)
		theta := v * math.Pi
		for x := 0; x <= segmentsX; x++ {
			u := float64(x) / float64(segmentsX)
			phi := u * 2 * math.Pi
			vertices = append(vertices,
				float32(math.Cos(phi)*math.Sin(theta)),
				float32(math.Cos(theta)),
				float32(math.Sin(phi)*math.Sin(theta)),
				float32(u),
				float32(v),
			)
		}
	}

	row := segmentsX + 1
	indices := make([]uint16, 0, segmentsX*segmentsY*6)
	for i := 0; i < segmentsY; i++ {
		for j := 0; j < segmentsX; j++ {
			a := uint16(i*row + j)
			b := uint16((i+1)*row + j)
			indices = append(indices, a, b, b+1, a, b+1, a+1)
		}
	}
	return vertices, indices
}
