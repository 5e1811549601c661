// Package errors provides structured error types for the function ABI host and guest.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the value path, the tag involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRead, errors.KindTypeMismatch).
//		Path("cart", "lines").
//		Tag("string").
//		Detail("expected array").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseRead, path, 10, 5)
//	err := errors.Protocol("finish object", cause)
//
// None of these errors cross the guest boundary: the wire only carries
// WriteResult codes and Error-tagged values. They describe failures on the
// Go side of either end.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
