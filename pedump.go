package pedump

import (
	"io"

	"github.com/veilmont/pedump/pe"
)

// Decode decodes the PE header region of src. It is a convenience alias for
// pe.DecodeHeaders.
func Decode(src io.ReadSeeker, opts ...pe.Option) (*pe.Headers, error) {
	return pe.DecodeHeaders(src, opts...)
}

// Open decodes the PE header region of the file at path. It is a convenience
// alias for pe.Open.
func Open(path string, opts ...pe.Option) (*pe.Headers, error) {
	return pe.Open(path, opts...)
}
