package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/xyproto/env/v2"
	"golang.org/x/term"

	"github.com/veilmont/pedump/pe"
)

var (
	headingColor = color.New(color.FgYellow, color.Bold)
	labelColor   = color.New(color.FgCyan)
	valueColor   = color.New(color.FgWhite)
	nameColor    = color.New(color.FgGreen)
)

// colorEnabled decides once per render whether colored output is wanted:
// off on explicit request, off when stdout is not a terminal.
func colorEnabled() bool {
	if flagNoColor || env.Bool("PEDUMP_NO_COLOR") {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// render pretty-prints decoded headers with labeled, colored fields.
func render(w io.Writer, path string, h *pe.Headers) error {
	color.NoColor = !colorEnabled()

	headingColor.Fprintf(w, "%s\n", path)
	field(w, "PE Offset", "0x%x", h.PEOffset)
	fmt.Fprintln(w)

	headingColor.Fprintln(w, "File Header")
	field(w, "Machine", "%s (0x%04x)", nameColor.Sprint(h.File.Machine), uint16(h.File.Machine))
	field(w, "Sections", "%d", h.File.NumberOfSections)
	field(w, "Timestamp", "0x%08x  %s", h.File.TimeDateStamp,
		h.File.Timestamp().Format("2006-01-02 15:04:05 UTC"))
	field(w, "Symbol Table", "0x%08x (%d symbols)", h.File.PointerToSymbolTable, h.File.NumberOfSymbols)
	field(w, "Optional Header Size", "%d", h.File.SizeOfOptionalHeader)
	field(w, "Characteristics", "%s", nameColor.Sprint(h.File.Characteristics))
	fmt.Fprintln(w)

	o := &h.Optional
	headingColor.Fprintln(w, "Optional Header")
	field(w, "Magic", "%s (0x%03x)", nameColor.Sprint(o.Magic), uint16(o.Magic))
	field(w, "Linker Version", "%d.%d", o.MajorLinkerVersion, o.MinorLinkerVersion)
	field(w, "Size of Code", "0x%x", o.SizeOfCode)
	field(w, "Size of Init Data", "0x%x", o.SizeOfInitializedData)
	field(w, "Size of Uninit Data", "0x%x", o.SizeOfUninitializedData)
	field(w, "Entry Point", "0x%x", o.AddressOfEntryPoint)
	field(w, "Base of Code", "0x%x", o.BaseOfCode)
	if !h.Is64Bit() {
		field(w, "Base of Data", "0x%x", o.BaseOfData)
	}
	field(w, "Image Base", "0x%x", o.ImageBase)
	field(w, "Alignment", "section 0x%x, file 0x%x", o.SectionAlignment, o.FileAlignment)
	field(w, "OS Version", "%d.%d", o.MajorOperatingSystemVersion, o.MinorOperatingSystemVersion)
	field(w, "Image Version", "%d.%d", o.MajorImageVersion, o.MinorImageVersion)
	field(w, "Subsystem Version", "%d.%d", o.MajorSubsystemVersion, o.MinorSubsystemVersion)
	field(w, "Size of Image", "0x%x", o.SizeOfImage)
	field(w, "Size of Headers", "0x%x", o.SizeOfHeaders)
	field(w, "Checksum", "0x%08x", o.CheckSum)
	field(w, "Subsystem", "%s (%d)", nameColor.Sprint(o.Subsystem), uint16(o.Subsystem))
	field(w, "DLL Characteristics", "%s", nameColor.Sprint(o.DllCharacteristics))
	field(w, "Stack Reserve/Commit", "0x%x / 0x%x", o.SizeOfStackReserve, o.SizeOfStackCommit)
	field(w, "Heap Reserve/Commit", "0x%x / 0x%x", o.SizeOfHeapReserve, o.SizeOfHeapCommit)
	fmt.Fprintln(w)

	headingColor.Fprintf(w, "Data Directories (%d)\n", len(o.DataDirectories))
	for i, d := range o.DataDirectories {
		labelColor.Fprintf(w, "  [%2d] %-16s", i, pe.DirectoryName(i))
		valueColor.Fprintf(w, " VA 0x%08x  Size 0x%08x\n", d.VirtualAddress, d.Size)
	}

	return nil
}

func field(w io.Writer, label, format string, args ...any) {
	labelColor.Fprintf(w, "  %-22s", label+":")
	valueColor.Fprintf(w, format+"\n", args...)
}
