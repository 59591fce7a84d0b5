package pe

import (
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	perr "github.com/veilmont/pedump/errors"
	"github.com/veilmont/pedump/pe/internal/binary"
)

// Option configures a decode call.
type Option func(*config)

type config struct {
	dump io.Writer
}

// WithDump registers a verbose side channel: after each header section has
// fully decoded, a human-readable rendering of it is written to w. The hook
// runs strictly between sections, never during field reads, and has no
// effect on the returned value or on decode control flow.
func WithDump(w io.Writer) Option {
	return func(c *config) {
		c.dump = w
	}
}

// DecodeHeaders decodes the PE header region of src: the DOS "MZ" marker,
// the "PE\0\0" signature located via the pointer at 0x3C, the COFF file
// header, and the optional header including its data-directory table.
// Nothing past the directory table is read.
//
// The stream may be positioned anywhere; DecodeHeaders seeks explicitly. It
// owns src exclusively for the duration of the call. Decoding is
// all-or-nothing: any failure returns a *errors.Error and no partial result.
func DecodeHeaders(src io.ReadSeeker, opts ...Option) (*Headers, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	r, err := binary.NewReader(src)
	if err != nil {
		return nil, perr.ReadFailed(perr.PhaseDosHeader, 0, err)
	}

	peOffset, err := readSignatures(r)
	if err != nil {
		return nil, err
	}

	file, err := decodeFileHeader(r)
	if err != nil {
		return nil, err
	}
	if cfg.dump != nil {
		if err := DumpFileHeader(cfg.dump, file); err != nil {
			return nil, perr.New(perr.PhaseFileHeader, perr.KindReadFailure).
				Cause(err).
				Detail("verbose dump failed").
				Build()
		}
	}

	optional, err := decodeOptionalHeader(r)
	if err != nil {
		return nil, err
	}
	if cfg.dump != nil {
		if err := DumpOptionalHeader(cfg.dump, optional); err != nil {
			return nil, perr.New(perr.PhaseOptionalHeader, perr.KindReadFailure).
				Cause(err).
				Detail("verbose dump failed").
				Build()
		}
	}

	return &Headers{
		PEOffset: peOffset,
		File:     *file,
		Optional: *optional,
	}, nil
}

// Open decodes the headers of the PE file at path. It opens the file,
// decodes, and closes; callers needing control over the byte source use
// DecodeHeaders directly.
func Open(path string, opts ...Option) (*Headers, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeHeaders(f, opts...)
}

// readSignatures validates the DOS marker, follows the PE offset pointer at
// 0x3C, and validates the PE signature, leaving the cursor at the first byte
// of the COFF file header. Returns the PE signature offset.
func readSignatures(r *binary.Reader) (uint32, error) {
	if err := r.Seek(0); err != nil {
		return 0, perr.ReadFailed(perr.PhaseDosHeader, 0, err)
	}
	sig, err := r.ReadBytes(2)
	if err != nil {
		return 0, streamErr(perr.PhaseDosHeader, r, err)
	}
	if string(sig) != dosSignature {
		return 0, perr.InvalidDosSignature(sig)
	}

	if err := r.Seek(peOffsetPointer); err != nil {
		return 0, perr.ReadFailed(perr.PhaseDosHeader, peOffsetPointer, err)
	}
	peOffset, err := r.ReadU32()
	if err != nil {
		return 0, streamErr(perr.PhaseDosHeader, r, err)
	}

	if err := r.Seek(int64(peOffset)); err != nil {
		return 0, perr.ReadFailed(perr.PhasePeSignature, int64(peOffset), err)
	}
	sig, err = r.ReadBytes(4)
	if err != nil {
		return 0, streamErr(perr.PhasePeSignature, r, err)
	}
	if string(sig) != peSignature {
		return 0, perr.InvalidPeSignature(int64(peOffset), sig)
	}

	Logger().Debug("pe signature validated",
		zap.Uint32("pe_offset", peOffset))

	return peOffset, nil
}

// decodeFileHeader reads the fixed 20-byte COFF file header. No conditional
// layout; an enum failure aborts the whole header read unchanged.
func decodeFileHeader(r *binary.Reader) (*FileHeader, error) {
	machineCode, err := r.ReadU16()
	if err != nil {
		return nil, streamErr(perr.PhaseFileHeader, r, err)
	}
	machine, err := DecodeMachineType(machineCode)
	if err != nil {
		return nil, err
	}

	h := &FileHeader{Machine: machine}
	if h.NumberOfSections, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseFileHeader, r, err)
	}
	if h.TimeDateStamp, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseFileHeader, r, err)
	}
	if h.PointerToSymbolTable, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseFileHeader, r, err)
	}
	if h.NumberOfSymbols, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseFileHeader, r, err)
	}
	if h.SizeOfOptionalHeader, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseFileHeader, r, err)
	}

	bits, err := r.ReadU16()
	if err != nil {
		return nil, streamErr(perr.PhaseFileHeader, r, err)
	}
	h.Characteristics = DecodeCoffCharacteristics(bits)

	Logger().Debug("file header decoded",
		zap.Stringer("machine", h.Machine),
		zap.Uint16("sections", h.NumberOfSections),
		zap.Stringer("characteristics", h.Characteristics))

	return h, nil
}

// decodeOptionalHeader reads the variable-width optional header. The magic
// is read first and fixes the width of every pointer-sized field after it:
// the wide flag is decided once here and threaded through, never re-derived
// per field.
func decodeOptionalHeader(r *binary.Reader) (*OptionalHeader, error) {
	magicCode, err := r.ReadU16()
	if err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	magic, err := DecodeImageMagic(magicCode)
	if err != nil {
		return nil, err
	}
	wide := magic == MagicPE32Plus

	h := &OptionalHeader{Magic: magic}
	if h.MajorLinkerVersion, err = r.ReadU8(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.MinorLinkerVersion, err = r.ReadU8(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.SizeOfCode, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.SizeOfInitializedData, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.SizeOfUninitializedData, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.AddressOfEntryPoint, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.BaseOfCode, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	// PE32+ folds BaseOfData into the widened ImageBase; the field exists
	// only in the 32-bit layouts and stays zero otherwise.
	if !wide {
		if h.BaseOfData, err = r.ReadU32(); err != nil {
			return nil, streamErr(perr.PhaseOptionalHeader, r, err)
		}
	}
	if h.ImageBase, err = r.ReadPointer(wide); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	if h.SectionAlignment, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.FileAlignment, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.MajorOperatingSystemVersion, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.MinorOperatingSystemVersion, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.MajorImageVersion, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.MinorImageVersion, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.MajorSubsystemVersion, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.MinorSubsystemVersion, err = r.ReadU16(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	// Win32VersionValue: reserved, must still consume its 4 bytes to keep
	// the cursor aligned.
	if _, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	if h.SizeOfImage, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.SizeOfHeaders, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.CheckSum, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	subsystemCode, err := r.ReadU16()
	if err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.Subsystem, err = DecodeSubsystem(subsystemCode); err != nil {
		return nil, err
	}

	dllBits, err := r.ReadU16()
	if err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	h.DllCharacteristics = DecodeDllCharacteristics(dllBits)

	if h.SizeOfStackReserve, err = r.ReadPointer(wide); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.SizeOfStackCommit, err = r.ReadPointer(wide); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.SizeOfHeapReserve, err = r.ReadPointer(wide); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}
	if h.SizeOfHeapCommit, err = r.ReadPointer(wide); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	// LoaderFlags: reserved, consumed and discarded.
	if _, err = r.ReadU32(); err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	count, err := r.ReadU32()
	if err != nil {
		return nil, streamErr(perr.PhaseOptionalHeader, r, err)
	}

	// The count is file-controlled. Check it against the remaining stream
	// before allocating entry storage so a malformed file cannot demand
	// unbounded memory.
	if int64(count)*dataDirectorySize > r.Remaining() {
		return nil, perr.MalformedDirectoryCount(r.Position(), count, r.Remaining())
	}

	Logger().Debug("optional header decoded",
		zap.Stringer("magic", h.Magic),
		zap.Stringer("subsystem", h.Subsystem),
		zap.Uint32("data_directories", count))

	h.DataDirectories = make([]DataDirectory, count)
	for i := range h.DataDirectories {
		if h.DataDirectories[i].VirtualAddress, err = r.ReadU32(); err != nil {
			return nil, streamErr(perr.PhaseDataDirectory, r, err)
		}
		if h.DataDirectories[i].Size, err = r.ReadU32(); err != nil {
			return nil, streamErr(perr.PhaseDataDirectory, r, err)
		}
	}

	return h, nil
}

// streamErr classifies a reader failure: end-of-stream is truncation, any
// other fault is a read failure.
func streamErr(phase perr.Phase, r *binary.Reader, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return perr.Truncated(phase, r.Position(), err)
	}
	return perr.ReadFailed(phase, r.Position(), err)
}
