package texture

import (
	"errors"
	"fmt"
)

// ErrEmptyImage is wrapped by LoadError when a source decodes to an image
// with zero width or height.
var ErrEmptyImage = errors.New("image has zero area")

// LoadError reports an unreadable, undecodable or empty texture source. It is
// raised while a scene or material is being built, never during shading.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("texture: unable to load texture map '%s': %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
