// Package errors provides structured error types for the classfile module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes the field path of the offending builder element,
// the offending value and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindInvalidData).
//		Path("methods[0]", "code[3]").
//		Value("iconst x").
//		Detail("literal is not an integer").
//		Build()
//
// Or use convenience constructors for the failures the encoder reports:
//
//	err := errors.InvalidLiteral(9, -1, 5)
//	err := errors.MissingRequiredField([]string{"class"}, "name")
//	err := errors.SymbolTableOverflow(65535, 65534)
//
// All errors implement the standard error interface and support errors.Is/As.
// The ErrInvalidLiteral, ErrMissingRequiredField and ErrSymbolTableOverflow
// sentinels match by kind regardless of phase. ErrSymbolTableOverflow only
// matches constant pool exhaustion, not other length or count overflows.
package errors
