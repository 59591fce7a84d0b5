// Package pe decodes the executable-image header region of a Windows
// Portable Executable (PE) file: the legacy DOS stub marker, the COFF file
// header, and the PE optional header including its data-directory table.
//
// The decoder is read-only and strict. Magic values are validated, and
// integer codes are mapped onto closed enumerations; a machine type,
// subsystem, or optional-header magic outside the known tables fails the
// decode rather than passing through. Bitmask characteristics fields use the
// opposite policy: unknown bits are masked out and ignored, so a future flag
// bit does not make existing files undecodable. Section headers, import and
// export tables, and everything else past the data-directory table are out
// of scope.
//
// # Decoding
//
// Decode from any io.ReadSeeker, or straight from a path:
//
//	f, _ := os.Open("app.exe")
//	defer f.Close()
//	headers, err := pe.DecodeHeaders(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(headers.File.Machine)       // e.g. Amd64
//	fmt.Println(headers.Optional.Subsystem) // e.g. WindowsCUI
//
//	headers, err := pe.Open("app.exe")
//
// Decoding is all-or-nothing: on any failure the returned error is a
// *errors.Error carrying the decode phase, the failure kind, the stream
// offset where applicable, and the offending value. No partial result is
// ever returned.
//
// # Verbose dump side channel
//
// WithDump registers a writer that receives a human-readable rendering of
// each header section immediately after that section decodes:
//
//	headers, err := pe.DecodeHeaders(f, pe.WithDump(os.Stderr))
//
// The hook is observational only; it never changes the returned value.
// Dump, DumpFileHeader, and DumpOptionalHeader render an already-decoded
// header on demand.
//
// # Enum decoders
//
// The mapping functions are exported for callers working with raw codes:
//
//	m, err := pe.DecodeMachineType(0x8664) // MachineAmd64
//	flags := pe.DecodeCoffCharacteristics(0x0022)
//	flags.Has(pe.CoffExecutableImage)      // true
//
// # Concurrency
//
// A decode call owns its byte source exclusively for its full duration.
// Calls on distinct sources are independent and may run concurrently; the
// decoded structures are immutable and hold no reference to the source.
package pe
