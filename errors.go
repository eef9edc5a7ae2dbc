package imgres

import "errors"

// Errors returned by resources.
var (
	// ErrNotLoaded is returned by render calls on a resource whose source
	// could not be opened. Resource.Err holds the cause.
	ErrNotLoaded = errors.New("imgres: resource not loaded")

	// ErrDisposed is returned by calls made after Dispose.
	ErrDisposed = errors.New("imgres: resource disposed")

	// ErrInvalidSize is returned for non-positive target sizes.
	ErrInvalidSize = errors.New("imgres: invalid target size")

	// ErrNotVector is returned by RenderVector on non-vector resources.
	ErrNotVector = errors.New("imgres: not a vector resource")

	// ErrEvicted is returned when a frame's cache entry was torn down while
	// the frame was being produced. The next call decodes it again.
	ErrEvicted = errors.New("imgres: cache entry evicted during render")

	// ErrNoTextureCreator is returned when a draw context cannot create textures.
	ErrNoTextureCreator = errors.New("imgres: draw context has no texture creator")
)
