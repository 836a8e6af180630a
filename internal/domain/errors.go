package domain

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// Sentinel errors for the extraction pipeline.
var (
	// ErrUnknownCallingConvention indicates a convention code outside the known set.
	ErrUnknownCallingConvention = errors.New("unknown calling convention")

	// ErrNameParse indicates no function name could be recovered from a demangled name.
	ErrNameParse = errors.New("cannot parse function name")

	// ErrMalformedSignature indicates parameter types and names cannot be paired.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrTableNotFound indicates the exported function table is missing.
	ErrTableNotFound = errors.New("function table not found")
)

// UnknownConventionError is fatal: it stops the whole run.
type UnknownConventionError struct {
	Symbol SymbolRef
	Code   string
}

func (e *UnknownConventionError) Error() string {
	return fmt.Sprintf("function %s has invalid CC (`%s`). Aborting. Use `--assumed-cc` to default a calling convention. "+
		"This error can be fixed by going to IDA, pressing Y on the given function, then enter", e.Symbol, e.Code)
}

func (e *UnknownConventionError) Unwrap() error { return ErrUnknownCallingConvention }

// NameParseError is row-scoped: the row is dropped.
type NameParseError struct {
	Symbol    SymbolRef
	Demangled string
}

func (e *NameParseError) Error() string {
	return fmt.Sprintf("%s: %v from %q", e.Symbol, ErrNameParse, e.Demangled)
}

func (e *NameParseError) Unwrap() error { return ErrNameParse }

// MalformedSignatureError is row-scoped: the row is dropped.
type MalformedSignatureError struct {
	Symbol  SymbolRef
	Types   int
	Names   int
	Message string
}

func (e *MalformedSignatureError) Error() string {
	return fmt.Sprintf("%s: %v: %s (%d types, %d names)", e.Symbol, ErrMalformedSignature, e.Message, e.Types, e.Names)
}

func (e *MalformedSignatureError) Unwrap() error { return ErrMalformedSignature }
