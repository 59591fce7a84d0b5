// Package pedump provides a read-only decoder for the header region of
// Windows Portable Executable (PE) files.
//
// The root package is a thin facade over the decoder library:
//
//	pedump/              Root package with Decode and Open conveniences
//	├── pe/              The header decoder: signatures, COFF file header,
//	│                    optional header, data directories, enum tables
//	├── errors/          Structured decode errors (phase, kind, offset, value)
//	└── cmd/pedump/      CLI: dump, watch, and browse subcommands
//
// # Quick Start
//
// Decode a file's headers:
//
//	headers, err := pedump.Open("app.exe")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(headers.File.Machine)
//	fmt.Println(headers.Optional.Magic)
//
// Or decode from any open seekable stream:
//
//	headers, err := pedump.Decode(f)
//
// See package pe for the full decoder API and package errors for the error
// taxonomy.
package pedump
