package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which decode stage the error occurred in
type Phase string

const (
	PhaseDosHeader      Phase = "dos_header"      // MZ marker and PE offset pointer
	PhasePeSignature    Phase = "pe_signature"    // PE\0\0 marker
	PhaseFileHeader     Phase = "file_header"     // 20-byte COFF file header
	PhaseOptionalHeader Phase = "optional_header" // variable-width optional header
	PhaseDataDirectory  Phase = "data_directory"  // data-directory table
)

// Kind categorizes the error
type Kind string

const (
	KindTruncatedInput          Kind = "truncated_input"
	KindInvalidDosSignature     Kind = "invalid_dos_signature"
	KindInvalidPeSignature      Kind = "invalid_pe_signature"
	KindUnrecognizedMachineType Kind = "unrecognized_machine_type"
	KindUnrecognizedSubsystem   Kind = "unrecognized_subsystem"
	KindUnrecognizedMagic       Kind = "unrecognized_image_magic"
	KindMalformedDirectoryCount Kind = "malformed_data_directory_count"
	KindReadFailure             Kind = "read_failure"
)

// Error is the structured error type returned by every decode failure.
// Offset is the absolute stream offset of the failing field, or -1 when the
// error came from a pure value check with no stream position.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Offset int64
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset 0x%x", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. An empty Phase or Kind in
// target acts as a wildcard, so errors.Is(err, &Error{Kind: KindTruncatedInput})
// matches a truncation in any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Offset sets the absolute stream offset of the failing field
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors, one per failure the decoder can hit

// Truncated reports that the stream ended before a required field was fully
// read.
func Truncated(phase Phase, offset int64, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncatedInput,
		Offset: offset,
		Detail: "unexpected end of input",
		Cause:  cause,
	}
}

// ReadFailed reports a non-EOF failure of the underlying stream, such as a
// seek error or an I/O fault. Truncation is KindTruncatedInput, not this.
func ReadFailed(phase Phase, offset int64, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindReadFailure,
		Offset: offset,
		Detail: "stream read failed",
		Cause:  cause,
	}
}

// InvalidDosSignature reports that the first two bytes were not "MZ".
func InvalidDosSignature(got []byte) *Error {
	return &Error{
		Phase:  PhaseDosHeader,
		Kind:   KindInvalidDosSignature,
		Offset: 0,
		Value:  got,
		Detail: fmt.Sprintf("want \"MZ\", got % x", got),
	}
}

// InvalidPeSignature reports that the four bytes at the PE header offset were
// not "PE\0\0".
func InvalidPeSignature(offset int64, got []byte) *Error {
	return &Error{
		Phase:  PhasePeSignature,
		Kind:   KindInvalidPeSignature,
		Offset: offset,
		Value:  got,
		Detail: fmt.Sprintf("want \"PE\\0\\0\", got % x", got),
	}
}

// UnrecognizedMachineType reports a machine code absent from the closed
// machine-type table.
func UnrecognizedMachineType(code uint16) *Error {
	return &Error{
		Phase:  PhaseFileHeader,
		Kind:   KindUnrecognizedMachineType,
		Offset: -1,
		Value:  code,
		Detail: fmt.Sprintf("no machine type maps to code 0x%04x", code),
	}
}

// UnrecognizedSubsystem reports a subsystem code absent from the closed
// subsystem table.
func UnrecognizedSubsystem(code uint16) *Error {
	return &Error{
		Phase:  PhaseOptionalHeader,
		Kind:   KindUnrecognizedSubsystem,
		Offset: -1,
		Value:  code,
		Detail: fmt.Sprintf("no subsystem maps to code 0x%04x", code),
	}
}

// UnrecognizedMagic reports an optional-header magic that is neither PE32,
// ROM, nor PE32+.
func UnrecognizedMagic(code uint16) *Error {
	return &Error{
		Phase:  PhaseOptionalHeader,
		Kind:   KindUnrecognizedMagic,
		Offset: -1,
		Value:  code,
		Detail: fmt.Sprintf("no image magic maps to code 0x%04x", code),
	}
}

// MalformedDirectoryCount reports a declared data-directory count that cannot
// fit in the remaining stream.
func MalformedDirectoryCount(offset int64, declared uint32, remaining int64) *Error {
	return &Error{
		Phase:  PhaseDataDirectory,
		Kind:   KindMalformedDirectoryCount,
		Offset: offset,
		Value:  declared,
		Detail: fmt.Sprintf("%d directories declared but only %d bytes remain", declared, remaining),
	}
}
