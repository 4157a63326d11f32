package engine

import "strings"

// Function is a fixed-arity function symbol applied to an ordered sequence
// of child terms. A zero-arity Function is a constant.
type Function struct {
	class
	sym  string
	args []Term
}

// NewFunction creates a function term.
func NewFunction(sym string, args ...Term) *Function {
	f := &Function{sym: sym, args: args}
	f.init(f)
	return f
}

// Symbol returns the function symbol.
func (f *Function) Symbol() string { return f.sym }

// Arity returns the number of children.
func (f *Function) Arity() int { return len(f.args) }

// Arg returns the i-th child.
func (f *Function) Arg(i int) Term { return f.args[i] }

// Args returns the children. The caller must not mutate the slice.
func (f *Function) Args() []Term { return f.args }

func (f *Function) String() string {
	if len(f.args) == 0 {
		return f.sym
	}
	var sb strings.Builder
	sb.WriteString(f.sym)
	sb.WriteString("(")
	for i, a := range f.args {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(Schema(a).String())
	}
	sb.WriteString(")")
	return sb.String()
}

// tupleMark is the suffix that turns a symbol into its tuple (marked) form.
const tupleMark = "#"

// MarkTuple returns the tuple-marked copy of f, the form dependency pairs
// are built from. Marking an already marked root is the identity.
func MarkTuple(f *Function) *Function {
	if strings.HasSuffix(f.sym, tupleMark) {
		return NewFunction(f.sym, copyArgs(f.args)...)
	}
	return NewFunction(f.sym+tupleMark, copyArgs(f.args)...)
}

// IsTupleSymbol reports whether sym is a tuple-marked symbol.
func IsTupleSymbol(sym string) bool {
	return strings.HasSuffix(sym, tupleMark)
}

func copyArgs(args []Term) []Term {
	out := make([]Term, len(args))
	for i, a := range args {
		out[i] = ShallowCopy(a)
	}
	return out
}
