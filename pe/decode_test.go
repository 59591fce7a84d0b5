package pe_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perr "github.com/veilmont/pedump/errors"
	"github.com/veilmont/pedump/pe"
)

// imageSpec holds the knobs for buildImage. Zero values give a well-formed
// PE32 console executable for AMD64.
type imageSpec struct {
	peOffset        uint32
	machine         uint16
	characteristics uint16
	magic           uint16
	subsystem       uint16
	declaredDirs    *uint32 // overrides the real directory count when set
	dirs            []pe.DataDirectory
}

func defaultSpec() imageSpec {
	return imageSpec{
		peOffset:        0x80,
		machine:         0x8664, // AMD64
		characteristics: 0x0022, // ExecutableImage | LargeAddressAware
		magic:           0x10B,  // PE32
		subsystem:       3,      // WindowsCUI
		dirs: []pe.DataDirectory{
			{VirtualAddress: 0x3000, Size: 0x128},
			{VirtualAddress: 0x4000, Size: 0x40},
		},
	}
}

// buildImage assembles a synthetic PE header region byte-for-byte: the DOS
// marker, the PE offset pointer at 0x3C, the PE signature, a COFF file
// header, and an optional header whose pointer fields follow the magic's
// width.
func buildImage(t *testing.T, s imageSpec) []byte {
	t.Helper()

	wide := s.magic == 0x20B
	var buf bytes.Buffer
	le := binary.LittleEndian

	put16 := func(v uint16) { _ = binary.Write(&buf, le, v) }
	put32 := func(v uint32) { _ = binary.Write(&buf, le, v) }
	putPtr := func(v uint64) {
		if wide {
			_ = binary.Write(&buf, le, v)
		} else {
			_ = binary.Write(&buf, le, uint32(v))
		}
	}

	buf.WriteString("MZ")
	for buf.Len() < 0x3C {
		buf.WriteByte(0)
	}
	put32(s.peOffset)
	for buf.Len() < int(s.peOffset) {
		buf.WriteByte(0)
	}
	buf.WriteString("PE\x00\x00")

	// COFF file header.
	optSize := 96 + 8*len(s.dirs)
	if wide {
		optSize = 112 + 8*len(s.dirs)
	}
	put16(s.machine)
	put16(3)          // NumberOfSections
	put32(0x60000000) // TimeDateStamp
	put32(0)          // PointerToSymbolTable
	put32(0)          // NumberOfSymbols
	put16(uint16(optSize))
	put16(s.characteristics)

	// Optional header.
	put16(s.magic)
	buf.WriteByte(14) // MajorLinkerVersion
	buf.WriteByte(29) // MinorLinkerVersion
	put32(0x1000)     // SizeOfCode
	put32(0x2000)     // SizeOfInitializedData
	put32(0)          // SizeOfUninitializedData
	put32(0x1234)     // AddressOfEntryPoint
	put32(0x1000)     // BaseOfCode
	if !wide {
		put32(0x2000) // BaseOfData
	}
	if wide {
		putPtr(0x140000000)
	} else {
		putPtr(0x400000)
	}
	put32(0x1000) // SectionAlignment
	put32(0x200)  // FileAlignment
	put16(6)      // MajorOperatingSystemVersion
	put16(0)      // MinorOperatingSystemVersion
	put16(1)      // MajorImageVersion
	put16(2)      // MinorImageVersion
	put16(6)      // MajorSubsystemVersion
	put16(0)      // MinorSubsystemVersion
	put32(0)      // Win32VersionValue (reserved)
	put32(0x5000) // SizeOfImage
	put32(0x400)  // SizeOfHeaders
	put32(0xCAFE) // CheckSum
	put16(s.subsystem)
	put16(0x8160)    // DllCharacteristics (0x20 bit is unknown)
	putPtr(0x100000) // SizeOfStackReserve
	putPtr(0x1000)   // SizeOfStackCommit
	putPtr(0x100000) // SizeOfHeapReserve
	putPtr(0x1000)   // SizeOfHeapCommit
	put32(0)         // LoaderFlags (reserved)
	count := uint32(len(s.dirs))
	if s.declaredDirs != nil {
		count = *s.declaredDirs
	}
	put32(count)
	for _, d := range s.dirs {
		put32(d.VirtualAddress)
		put32(d.Size)
	}

	return buf.Bytes()
}

func decodeKind(t *testing.T, err error) perr.Kind {
	t.Helper()
	var e *perr.Error
	if !errors.As(err, &e) {
		t.Fatalf("error type %T: %v", err, err)
	}
	return e.Kind
}

func TestDecodeHeadersPE32(t *testing.T) {
	img := buildImage(t, defaultSpec())

	h, err := pe.DecodeHeaders(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}

	if h.PEOffset != 0x80 {
		t.Errorf("PEOffset = 0x%x, want 0x80", h.PEOffset)
	}
	if h.File.Machine != pe.MachineAmd64 {
		t.Errorf("Machine = %v, want Amd64", h.File.Machine)
	}
	if h.File.NumberOfSections != 3 {
		t.Errorf("NumberOfSections = %d, want 3", h.File.NumberOfSections)
	}
	want := pe.DecodeCoffCharacteristics(0x0022)
	if h.File.Characteristics != want {
		t.Errorf("Characteristics = %v, want %v", h.File.Characteristics, want)
	}
	if !h.File.Characteristics.Has(pe.CoffExecutableImage) ||
		!h.File.Characteristics.Has(pe.CoffLargeAddressAware) {
		t.Errorf("Characteristics missing expected flags: %v", h.File.Characteristics)
	}
	if h.Optional.Magic != pe.MagicPE32 {
		t.Errorf("Magic = %v, want PE32", h.Optional.Magic)
	}
	if h.Is64Bit() {
		t.Error("Is64Bit() = true for a PE32 image")
	}
	if h.Optional.BaseOfData != 0x2000 {
		t.Errorf("BaseOfData = 0x%x, want 0x2000", h.Optional.BaseOfData)
	}
	if h.Optional.ImageBase != 0x400000 {
		t.Errorf("ImageBase = 0x%x, want 0x400000", h.Optional.ImageBase)
	}
	if h.Optional.Subsystem != pe.SubsystemWindowsCUI {
		t.Errorf("Subsystem = %v, want WindowsCUI", h.Optional.Subsystem)
	}
	if len(h.Optional.DataDirectories) != 2 {
		t.Fatalf("DataDirectories = %d entries, want 2", len(h.Optional.DataDirectories))
	}
	if d := h.Optional.DataDirectories[0]; d.VirtualAddress != 0x3000 || d.Size != 0x128 {
		t.Errorf("directory 0 = %+v", d)
	}
	if d := h.Optional.DataDirectories[1]; d.VirtualAddress != 0x4000 || d.Size != 0x40 {
		t.Errorf("directory 1 = %+v", d)
	}

	// The unknown 0x20 bit must have been masked out.
	wantDll := pe.DecodeDllCharacteristics(0x8140)
	if h.Optional.DllCharacteristics != wantDll {
		t.Errorf("DllCharacteristics = %v, want %v", h.Optional.DllCharacteristics, wantDll)
	}
}

func TestDecodeHeadersPE32Plus(t *testing.T) {
	s := defaultSpec()
	s.magic = 0x20B
	s.machine = 0xAA64 // ARM64
	img := buildImage(t, s)

	h, err := pe.DecodeHeaders(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}

	if h.Optional.Magic != pe.MagicPE32Plus {
		t.Errorf("Magic = %v, want PE32+", h.Optional.Magic)
	}
	if !h.Is64Bit() {
		t.Error("Is64Bit() = false for a PE32+ image")
	}
	// BaseOfData does not exist in the wide layout and must decode as zero.
	if h.Optional.BaseOfData != 0 {
		t.Errorf("BaseOfData = 0x%x, want 0", h.Optional.BaseOfData)
	}
	if h.Optional.ImageBase != 0x140000000 {
		t.Errorf("ImageBase = 0x%x, want 0x140000000", h.Optional.ImageBase)
	}
	if h.Optional.SizeOfStackReserve != 0x100000 || h.Optional.SizeOfHeapCommit != 0x1000 {
		t.Errorf("stack/heap fields misread: %+v", h.Optional)
	}
	// The image carries not one spare byte: every field width must have been
	// consumed exactly for the directory entries to line up.
	if len(h.Optional.DataDirectories) != 2 {
		t.Fatalf("DataDirectories = %d entries, want 2", len(h.Optional.DataDirectories))
	}
	if d := h.Optional.DataDirectories[0]; d.VirtualAddress != 0x3000 || d.Size != 0x128 {
		t.Errorf("directory 0 = %+v", d)
	}
}

func TestDecodeHeadersROM(t *testing.T) {
	s := defaultSpec()
	s.magic = 0x107
	img := buildImage(t, s)

	h, err := pe.DecodeHeaders(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if h.Optional.Magic != pe.MagicROM {
		t.Errorf("Magic = %v, want ROM", h.Optional.Magic)
	}
	// ROM shares the narrow layout.
	if h.Optional.BaseOfData != 0x2000 || h.Optional.ImageBase != 0x400000 {
		t.Errorf("narrow fields misread: BaseOfData=0x%x ImageBase=0x%x",
			h.Optional.BaseOfData, h.Optional.ImageBase)
	}
}

func TestDecodeHeadersDosSignatureSweep(t *testing.T) {
	for hi := 0; hi <= 0xFF; hi++ {
		for lo := 0; lo <= 0xFF; lo++ {
			if hi == 'M' && lo == 'Z' {
				continue
			}
			_, err := pe.DecodeHeaders(bytes.NewReader([]byte{byte(hi), byte(lo)}))
			if err == nil {
				t.Fatalf("prefix %02x %02x: expected failure", hi, lo)
			}
			var e *perr.Error
			if !errors.As(err, &e) || e.Kind != perr.KindInvalidDosSignature {
				t.Fatalf("prefix %02x %02x: got %v, want invalid_dos_signature", hi, lo, err)
			}
		}
	}

	// A stream that IS "MZ" but nothing else fails later, on the offset
	// pointer, not on the signature.
	_, err := pe.DecodeHeaders(bytes.NewReader([]byte("MZ")))
	if kind := decodeKind(t, err); kind != perr.KindTruncatedInput {
		t.Errorf(`decode of bare "MZ": kind %q, want truncated_input`, kind)
	}
}

func TestDecodeHeadersInvalidPeSignature(t *testing.T) {
	img := buildImage(t, defaultSpec())
	copy(img[0x80:], "PE\x01\x00")

	_, err := pe.DecodeHeaders(bytes.NewReader(img))
	if kind := decodeKind(t, err); kind != perr.KindInvalidPeSignature {
		t.Errorf("kind = %q, want invalid_pe_signature", kind)
	}
	var e *perr.Error
	errors.As(err, &e)
	if e.Offset != 0x80 {
		t.Errorf("Offset = 0x%x, want 0x80", e.Offset)
	}
}

func TestDecodeHeadersUnrecognizedMachine(t *testing.T) {
	s := defaultSpec()
	s.machine = 0xDEAD
	_, err := pe.DecodeHeaders(bytes.NewReader(buildImage(t, s)))
	if kind := decodeKind(t, err); kind != perr.KindUnrecognizedMachineType {
		t.Errorf("kind = %q, want unrecognized_machine_type", kind)
	}
	var e *perr.Error
	errors.As(err, &e)
	if e.Value != uint16(0xDEAD) {
		t.Errorf("Value = %v, want 0xdead", e.Value)
	}
}

func TestDecodeHeadersUnrecognizedMagic(t *testing.T) {
	s := defaultSpec()
	s.magic = 0x30B
	// An unknown magic builds as the narrow layout; the decoder must reject
	// it before reading any later field.
	_, err := pe.DecodeHeaders(bytes.NewReader(buildImage(t, s)))
	if kind := decodeKind(t, err); kind != perr.KindUnrecognizedMagic {
		t.Errorf("kind = %q, want unrecognized_image_magic", kind)
	}
}

func TestDecodeHeadersUnrecognizedSubsystem(t *testing.T) {
	s := defaultSpec()
	s.subsystem = 16
	_, err := pe.DecodeHeaders(bytes.NewReader(buildImage(t, s)))
	if kind := decodeKind(t, err); kind != perr.KindUnrecognizedSubsystem {
		t.Errorf("kind = %q, want unrecognized_subsystem", kind)
	}
}

func TestDecodeHeadersTruncationSweep(t *testing.T) {
	img := buildImage(t, defaultSpec())

	// PE32 layout: the directory-count field ends 96 bytes into the optional
	// header, which starts right after the 24 bytes of signature and COFF
	// header at 0x80.
	countEnd := 0x80 + 4 + 20 + 96

	for cut := 0; cut < len(img); cut++ {
		_, err := pe.DecodeHeaders(bytes.NewReader(img[:cut]))
		if err == nil {
			t.Fatalf("cut at %d: expected failure, got success", cut)
		}
		var e *perr.Error
		if !errors.As(err, &e) {
			t.Fatalf("cut at %d: error type %T", cut, err)
		}
		switch {
		case cut < countEnd:
			if e.Kind != perr.KindTruncatedInput {
				t.Fatalf("cut at %d: kind %q, want truncated_input", cut, e.Kind)
			}
		default:
			// The declared count no longer fits the remaining bytes, and the
			// defensive check fires before any entry read.
			if e.Kind != perr.KindMalformedDirectoryCount {
				t.Fatalf("cut at %d: kind %q, want malformed_data_directory_count", cut, e.Kind)
			}
		}
	}
}

func TestDecodeHeadersOversizedDirectoryCount(t *testing.T) {
	s := defaultSpec()
	declared := uint32(0xFFFFFFFF)
	s.declaredDirs = &declared
	_, err := pe.DecodeHeaders(bytes.NewReader(buildImage(t, s)))
	if kind := decodeKind(t, err); kind != perr.KindMalformedDirectoryCount {
		t.Errorf("kind = %q, want malformed_data_directory_count", kind)
	}
	var e *perr.Error
	errors.As(err, &e)
	if e.Value != uint32(0xFFFFFFFF) {
		t.Errorf("Value = %v, want the declared count", e.Value)
	}
}

func TestDecodeHeadersZeroDirectories(t *testing.T) {
	s := defaultSpec()
	s.dirs = nil
	h, err := pe.DecodeHeaders(bytes.NewReader(buildImage(t, s)))
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if len(h.Optional.DataDirectories) != 0 {
		t.Errorf("DataDirectories = %d entries, want 0", len(h.Optional.DataDirectories))
	}
}

func TestDecodeHeadersTrailingBytesIgnored(t *testing.T) {
	// Section headers and beyond are out of scope: bytes past the directory
	// table must not affect the result.
	img := buildImage(t, defaultSpec())
	padded := append(append([]byte{}, img...), make([]byte, 512)...)

	h, err := pe.DecodeHeaders(bytes.NewReader(padded))
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if len(h.Optional.DataDirectories) != 2 {
		t.Errorf("DataDirectories = %d entries, want 2", len(h.Optional.DataDirectories))
	}
}

func TestDecodeHeadersWithDump(t *testing.T) {
	var buf bytes.Buffer
	img := buildImage(t, defaultSpec())

	h, err := pe.DecodeHeaders(bytes.NewReader(img), pe.WithDump(&buf))
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if h == nil {
		t.Fatal("nil headers with dump enabled")
	}

	out := buf.String()
	for _, want := range []string{"File Header", "Optional Header", "Amd64", "PE32", "Import"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump output missing %q:\n%s", want, out)
		}
	}
}

func TestDecodeHeadersRespectsInitialPosition(t *testing.T) {
	// The stream may arrive positioned anywhere; the decoder seeks itself.
	img := buildImage(t, defaultSpec())
	src := bytes.NewReader(img)
	if _, err := src.Seek(50, 0); err != nil {
		t.Fatalf("pre-seek: %v", err)
	}

	h, err := pe.DecodeHeaders(src)
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if h.File.Machine != pe.MachineAmd64 {
		t.Errorf("Machine = %v, want Amd64", h.File.Machine)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synthetic.exe")
	if err := os.WriteFile(path, buildImage(t, defaultSpec()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	h, err := pe.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if h.File.Machine != pe.MachineAmd64 {
		t.Errorf("Machine = %v, want Amd64", h.File.Machine)
	}

	if _, err := pe.Open(filepath.Join(t.TempDir(), "missing.exe")); err == nil {
		t.Error("Open on a missing file should fail")
	}
}

func TestFileHeaderHelpers(t *testing.T) {
	h, err := pe.DecodeHeaders(bytes.NewReader(buildImage(t, defaultSpec())))
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}

	if h.File.IsDLL() {
		t.Error("IsDLL() = true without the DLL bit")
	}
	if !h.File.IsExecutableImage() {
		t.Error("IsExecutableImage() = false with the bit set")
	}
	if got := h.File.Timestamp().Unix(); got != 0x60000000 {
		t.Errorf("Timestamp() = %d, want %d", got, 0x60000000)
	}

	if _, ok := h.Optional.Directory(0); !ok {
		t.Error("Directory(0) should exist")
	}
	if _, ok := h.Optional.Directory(2); ok {
		t.Error("Directory(2) should not exist with 2 entries")
	}
	if _, ok := h.Optional.Directory(-1); ok {
		t.Error("Directory(-1) should not exist")
	}
}
