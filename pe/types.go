package pe

import "time"

// Headers is the combined result of one decode: the COFF file header and the
// PE optional header including its data-directory table. Values are created
// once per decode call and hold no reference to the byte source.
type Headers struct {
	// PEOffset is the absolute file offset of the "PE\0\0" signature, read
	// from the pointer at 0x3C.
	PEOffset uint32

	File     FileHeader
	Optional OptionalHeader
}

// Is64Bit reports whether the image uses the 64-bit optional-header layout.
func (h *Headers) Is64Bit() bool {
	return h.Optional.Magic == MagicPE32Plus
}

// FileHeader is the fixed 20-byte COFF file header.
type FileHeader struct {
	Machine              MachineType
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      CoffFlags
}

// Timestamp returns TimeDateStamp as a UTC time. The field counts seconds
// since the Unix epoch.
func (h *FileHeader) Timestamp() time.Time {
	return time.Unix(int64(h.TimeDateStamp), 0).UTC()
}

// IsDLL reports whether the image is a dynamic-link library.
func (h *FileHeader) IsDLL() bool {
	return h.Characteristics.Has(CoffDLL)
}

// IsExecutableImage reports whether the image is marked runnable.
func (h *FileHeader) IsExecutableImage() bool {
	return h.Characteristics.Has(CoffExecutableImage)
}

// OptionalHeader is the PE optional header up through the data-directory
// table. Pointer-sized fields (ImageBase, the stack and heap sizes) are held
// as uint64 regardless of variant; 32-bit images store them zero-extended.
type OptionalHeader struct {
	Magic              ImageMagic
	MajorLinkerVersion uint8
	MinorLinkerVersion uint8

	SizeOfCode              uint32
	SizeOfInitializedData   uint32
	SizeOfUninitializedData uint32
	AddressOfEntryPoint     uint32
	BaseOfCode              uint32

	// BaseOfData exists only in the 32-bit layouts; PE32+ images never carry
	// the field and decode it as zero.
	BaseOfData uint32

	ImageBase        uint64
	SectionAlignment uint32
	FileAlignment    uint32

	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16

	SizeOfImage   uint32
	SizeOfHeaders uint32
	CheckSum      uint32

	Subsystem          Subsystem
	DllCharacteristics DllFlags

	SizeOfStackReserve uint64
	SizeOfStackCommit  uint64
	SizeOfHeapReserve  uint64
	SizeOfHeapCommit   uint64

	// DataDirectories holds exactly as many entries as the header declared,
	// in table order.
	DataDirectories []DataDirectory
}

// Directory returns the entry at the given table index and whether the
// header declared that many entries.
func (h *OptionalHeader) Directory(index int) (DataDirectory, bool) {
	if index < 0 || index >= len(h.DataDirectories) {
		return DataDirectory{}, false
	}
	return h.DataDirectories[index], true
}

// DataDirectory is one (address, size) pair of the data-directory table. The
// structures it points at are outside this package's scope.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}
