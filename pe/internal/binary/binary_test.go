package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func newTestReader(t *testing.T, data []byte) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return r
}

func TestReaderScalars(t *testing.T) {
	data := []byte{
		0xAB,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01,
	}
	r := newTestReader(t, data)

	u8, err := r.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	if u8 != 0xAB {
		t.Errorf("ReadU8: got 0x%02x, want 0xab", u8)
	}

	u16, err := r.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	if u16 != 0x1234 {
		t.Errorf("ReadU16: got 0x%04x, want 0x1234", u16)
	}

	u32, err := r.ReadU32()
	if err != nil {
		t.Fatalf("ReadU32: %v", err)
	}
	if u32 != 0x12345678 {
		t.Errorf("ReadU32: got 0x%08x, want 0x12345678", u32)
	}

	u64, err := r.ReadU64()
	if err != nil {
		t.Fatalf("ReadU64: %v", err)
	}
	if u64 != 0x0123456789ABCDEF {
		t.Errorf("ReadU64: got 0x%016x, want 0x0123456789abcdef", u64)
	}

	if r.Position() != int64(len(data)) {
		t.Errorf("final position: got %d, want %d", r.Position(), len(data))
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := newTestReader(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}

	_, err = r.ReadBytes(10)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("reading past end: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReaderTruncationSentinel(t *testing.T) {
	// Stream ends exactly on the previous field boundary: still the same
	// sentinel, never a zero-filled value.
	r := newTestReader(t, []byte{0xAA, 0xBB})
	if _, err := r.ReadU16(); err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	_, err := r.ReadU32()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("read at end: got %v, want io.ErrUnexpectedEOF", err)
	}

	// Stream ends mid-field.
	r = newTestReader(t, []byte{0x01, 0x02})
	_, err = r.ReadU32()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("read mid-field: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReaderReadPointer(t *testing.T) {
	data := []byte{0x78, 0x56, 0x34, 0x12, 0xEF, 0xCD, 0xAB, 0x89}

	// Narrow: consumes 4 bytes, zero-extends.
	r := newTestReader(t, data)
	v, err := r.ReadPointer(false)
	if err != nil {
		t.Fatalf("ReadPointer(false): %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("ReadPointer(false): got 0x%x, want 0x12345678", v)
	}
	if r.Position() != 4 {
		t.Errorf("narrow pointer position: got %d, want 4", r.Position())
	}

	// Wide: consumes all 8 bytes.
	r = newTestReader(t, data)
	v, err = r.ReadPointer(true)
	if err != nil {
		t.Fatalf("ReadPointer(true): %v", err)
	}
	if v != 0x89ABCDEF12345678 {
		t.Errorf("ReadPointer(true): got 0x%x, want 0x89abcdef12345678", v)
	}
	if r.Position() != 8 {
		t.Errorf("wide pointer position: got %d, want 8", r.Position())
	}
}

func TestReaderSeek(t *testing.T) {
	r := newTestReader(t, []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55})

	if err := r.Seek(4); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if r.Position() != 4 {
		t.Errorf("position after seek: got %d, want 4", r.Position())
	}

	b, err := r.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8 after seek: %v", err)
	}
	if b != 0x44 {
		t.Errorf("ReadU8 after seek: got 0x%02x, want 0x44", b)
	}

	// Seeking backwards works too.
	if err := r.Seek(1); err != nil {
		t.Fatalf("Seek back: %v", err)
	}
	b, err = r.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8 after seek back: %v", err)
	}
	if b != 0x11 {
		t.Errorf("ReadU8 after seek back: got 0x%02x, want 0x11", b)
	}
}

func TestReaderSizeRemaining(t *testing.T) {
	r := newTestReader(t, make([]byte, 10))

	if r.Size() != 10 {
		t.Errorf("Size: got %d, want 10", r.Size())
	}
	if r.Remaining() != 10 {
		t.Errorf("Remaining at start: got %d, want 10", r.Remaining())
	}

	if _, err := r.ReadBytes(6); err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if r.Remaining() != 4 {
		t.Errorf("Remaining after read: got %d, want 4", r.Remaining())
	}

	// A seek past the end never yields a negative remainder.
	if err := r.Seek(100); err != nil {
		t.Fatalf("Seek past end: %v", err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining past end: got %d, want 0", r.Remaining())
	}
	if _, err := r.ReadU8(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("read past end: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestNewReaderRewinds(t *testing.T) {
	src := bytes.NewReader([]byte{0xAA, 0xBB, 0xCC})
	if _, err := src.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("pre-seek: %v", err)
	}

	r, err := NewReader(src)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Position() != 0 {
		t.Errorf("position: got %d, want 0", r.Position())
	}
	b, err := r.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	if b != 0xAA {
		t.Errorf("first byte: got 0x%02x, want 0xaa", b)
	}
}
