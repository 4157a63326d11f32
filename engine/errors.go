package engine

import "errors"

var (
	// ErrPosition is reported when a position does not address a subterm.
	ErrPosition = errors.New("position out of bounds")

	// ErrUnsupported is reported when an operation is not defined for a
	// term variant, e.g. indexing into a hat term.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrMalformedRule is reported when a rule cannot be constructed: the
	// left side is not a function term or the right side is not a valid
	// rule body.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrStrategy is reported when a rewriting strategy other than "FULL"
	// is requested.
	ErrStrategy = errors.New("unsupported rewriting strategy")
)
