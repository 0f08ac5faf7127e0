package gpu

import "errors"

var (
	// ErrNoDevice indicates a texture target was created without a GPU device or queue.
	ErrNoDevice = errors.New("gpu device or queue is nil")

	// ErrSurfaceReleased indicates a surface was advanced after Release.
	ErrSurfaceReleased = errors.New("surface released")

	// ErrTextureAllocation indicates the backing texture could not be (re)allocated.
	ErrTextureAllocation = errors.New("texture allocation failed")

	// ErrUpload indicates frame pixels could not be written to the texture.
	ErrUpload = errors.New("texture upload failed")
)
