package binary

import (
	"encoding/binary"
	"io"
)

// Reader wraps an io.ReadSeeker with position tracking and fixed-width
// little-endian read methods. All reads advance the position by exactly the
// field width; a short read surfaces as io.ErrUnexpectedEOF and never
// zero-fills.
type Reader struct {
	src  io.ReadSeeker
	pos  int64
	size int64
}

// NewReader creates a Reader over src. The stream may be positioned anywhere;
// NewReader measures its total size and rewinds to the start.
func NewReader(src io.ReadSeeker) (*Reader, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return &Reader{src: src, size: size}, nil
}

// Position returns the current absolute byte offset.
func (r *Reader) Position() int64 {
	return r.pos
}

// Size returns the total length of the underlying stream.
func (r *Reader) Size() int64 {
	return r.size
}

// Remaining returns the number of bytes between the current position and the
// end of the stream. Never negative, even after a seek past the end.
func (r *Reader) Remaining() int64 {
	if r.pos >= r.size {
		return 0
	}
	return r.size - r.pos
}

// Seek repositions the cursor to the given absolute offset.
func (r *Reader) Seek(offset int64) error {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	r.pos = offset
	return nil
}

// ReadBytes reads exactly n bytes. A stream ending mid-field returns
// io.ErrUnexpectedEOF; a stream ending on the field boundary returns the
// same, so callers see one truncation sentinel.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r.src, buf)
	r.pos += int64(read)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU16 reads a little-endian uint16 (fixed 2 bytes).
func (r *Reader) ReadU16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32 reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU64 reads a little-endian uint64 (fixed 8 bytes).
func (r *Reader) ReadU64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadPointer reads a pointer-sized field: a native uint64 when wide is true,
// otherwise a uint32 zero-extended to 64 bits.
func (r *Reader) ReadPointer(wide bool) (uint64, error) {
	if wide {
		return r.ReadU64()
	}
	v, err := r.ReadU32()
	return uint64(v), err
}
