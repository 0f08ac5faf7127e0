package gpu

// TextureBackend lets tests outside the package supply their own GPU backend.
type TextureBackend = textureBackend

func withBackendFactory(factory func(label string) (textureBackend, error)) TextureTargetBuilderOption {
	return func(t *textureTarget) {
		t.newBackend = factory
	}
}

// WithBackendFactory replaces the wgpu backend, so surfaces can run without a device.
func WithBackendFactory(factory func(label string) (TextureBackend, error)) TextureTargetBuilderOption {
	return withBackendFactory(factory)
}
