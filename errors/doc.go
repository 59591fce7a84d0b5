// Package errors provides structured error types for the pedump library.
//
// Errors are categorized by Phase (which decode stage failed) and Kind (what
// went wrong). The Error type includes the offending value, the absolute
// stream offset where applicable, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseOptionalHeader, errors.KindTruncatedInput).
//		Offset(0x98).
//		Cause(io.ErrUnexpectedEOF).
//		Detail("image base field cut short").
//		Build()
//
// Or use the convenience constructors, one per decode failure:
//
//	err := errors.UnrecognizedMachineType(0x1234)
//	err := errors.Truncated(errors.PhaseFileHeader, off, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// Matching treats an empty Phase or Kind in the target as a wildcard:
//
//	errors.Is(err, &errors.Error{Kind: errors.KindTruncatedInput})
package errors
