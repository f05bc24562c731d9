package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode   Phase = "encode"   // instruction and constant encoding
	PhaseAssemble Phase = "assemble" // code/method/class section assembly
	PhaseValidate Phase = "validate" // builder validation before emit
	PhaseParse    Phase = "parse"    // textual class definitions
	PhaseLoad     Phase = "load"     // reading definition files
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidLiteral      Kind = "invalid_literal"
	KindFieldMissing        Kind = "field_missing"
	KindOverflow            Kind = "overflow"
	KindSymbolTableOverflow Kind = "symbol_table_overflow"
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidData         Kind = "invalid_data"
	KindUnsupported         Kind = "unsupported"
)

// Sentinels for errors.Is. Matching ignores phase and compares kind only.
var (
	ErrInvalidLiteral         = &kindSentinel{KindInvalidLiteral}
	ErrMissingRequiredField   = &kindSentinel{KindFieldMissing}
	ErrSymbolTableOverflow    = &kindSentinel{KindSymbolTableOverflow}
	ErrInvalidInput           = &kindSentinel{KindInvalidInput}
	ErrUnsupportedInstruction = &kindSentinel{KindUnsupported}
)

type kindSentinel struct {
	kind Kind
}

func (s *kindSentinel) Error() string {
	return string(s.kind)
}

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return e.Phase == t.Phase && e.Kind == t.Kind
	case *kindSentinel:
		return e.Kind == t.kind
	}
	return false
}

// WithPath returns a copy of the first *Error in err's chain with path
// prefixed to its Path. Errors without a structured error are returned as is.
func WithPath(err error, path ...string) error {
	var e *Error
	if !stderrors.As(err, &e) {
		return err
	}
	out := *e
	out.Path = append(append([]string(nil), path...), e.Path...)
	return &out
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
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

// Convenience constructors for common error patterns

// InvalidLiteral reports an integer literal that has no short-form encoding.
func InvalidLiteral(value int32, minValid, maxValid int32) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidLiteral,
		Detail: fmt.Sprintf("literal %d outside [%d, %d]", value, minValid, maxValid),
		Value:  value,
	}
}

// MissingRequiredField reports a builder field that must be set before emit.
func MissingRequiredField(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not set", fieldName),
		Value:  fieldName,
	}
}

// SymbolTableOverflow reports a constant pool that has run out of indices.
func SymbolTableOverflow(requested int, maxIndex int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindSymbolTableOverflow,
		Detail: fmt.Sprintf("constant pool index %d exceeds maximum %d", requested, maxIndex),
		Value:  requested,
	}
}

// Overflow creates an overflow error for a length or count field
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(path []string, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a definition loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
