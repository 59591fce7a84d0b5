package pe

import (
	"fmt"
	"io"
)

// Dump writes a human-readable rendering of the full decoded header region
// to w: file header, optional header, and the data-directory table.
func Dump(w io.Writer, h *Headers) error {
	if _, err := fmt.Fprintf(w, "PE signature at offset 0x%x\n\n", h.PEOffset); err != nil {
		return err
	}
	if err := DumpFileHeader(w, &h.File); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return DumpOptionalHeader(w, &h.Optional)
}

// DumpFileHeader writes a rendering of the COFF file header to w.
func DumpFileHeader(w io.Writer, h *FileHeader) error {
	_, err := fmt.Fprintf(w,
		"File Header\n"+
			"  Machine:               %s (0x%04x)\n"+
			"  Number of Sections:    %d\n"+
			"  Time Date Stamp:       0x%08x  %s\n"+
			"  Symbol Table Pointer:  0x%08x\n"+
			"  Number of Symbols:     %d\n"+
			"  Optional Header Size:  %d\n"+
			"  Characteristics:       %s\n",
		h.Machine, uint16(h.Machine),
		h.NumberOfSections,
		h.TimeDateStamp, h.Timestamp().Format("2006-01-02 15:04:05 UTC"),
		h.PointerToSymbolTable,
		h.NumberOfSymbols,
		h.SizeOfOptionalHeader,
		h.Characteristics,
	)
	return err
}

// DumpOptionalHeader writes a rendering of the optional header and its
// data-directory table to w.
func DumpOptionalHeader(w io.Writer, h *OptionalHeader) error {
	_, err := fmt.Fprintf(w,
		"Optional Header\n"+
			"  Magic:                 %s (0x%03x)\n"+
			"  Linker Version:        %d.%d\n"+
			"  Size of Code:          0x%08x\n"+
			"  Size of Init Data:     0x%08x\n"+
			"  Size of Uninit Data:   0x%08x\n"+
			"  Entry Point:           0x%08x\n"+
			"  Base of Code:          0x%08x\n"+
			"  Base of Data:          0x%08x\n"+
			"  Image Base:            0x%x\n"+
			"  Section Alignment:     0x%x\n"+
			"  File Alignment:        0x%x\n"+
			"  OS Version:            %d.%d\n"+
			"  Image Version:         %d.%d\n"+
			"  Subsystem Version:     %d.%d\n"+
			"  Size of Image:         0x%08x\n"+
			"  Size of Headers:       0x%08x\n"+
			"  Checksum:              0x%08x\n"+
			"  Subsystem:             %s (%d)\n"+
			"  DLL Characteristics:   %s\n"+
			"  Stack Reserve/Commit:  0x%x / 0x%x\n"+
			"  Heap Reserve/Commit:   0x%x / 0x%x\n",
		h.Magic, uint16(h.Magic),
		h.MajorLinkerVersion, h.MinorLinkerVersion,
		h.SizeOfCode,
		h.SizeOfInitializedData,
		h.SizeOfUninitializedData,
		h.AddressOfEntryPoint,
		h.BaseOfCode,
		h.BaseOfData,
		h.ImageBase,
		h.SectionAlignment,
		h.FileAlignment,
		h.MajorOperatingSystemVersion, h.MinorOperatingSystemVersion,
		h.MajorImageVersion, h.MinorImageVersion,
		h.MajorSubsystemVersion, h.MinorSubsystemVersion,
		h.SizeOfImage,
		h.SizeOfHeaders,
		h.CheckSum,
		h.Subsystem, uint16(h.Subsystem),
		h.DllCharacteristics,
		h.SizeOfStackReserve, h.SizeOfStackCommit,
		h.SizeOfHeapReserve, h.SizeOfHeapCommit,
	)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "  Data Directories:      %d\n", len(h.DataDirectories)); err != nil {
		return err
	}
	for i, d := range h.DataDirectories {
		_, err := fmt.Fprintf(w, "    [%2d] %-16s VA 0x%08x  Size 0x%08x\n",
			i, DirectoryName(i), d.VirtualAddress, d.Size)
		if err != nil {
			return err
		}
	}
	return nil
}
