package engine

import (
	"fmt"
	"sync/atomic"
)

var varCounter int64

// Variable is a term variable. Variables have global identity: two
// variables are the same variable only if they are the same node.
type Variable struct {
	class
	id   int64
	name string
}

// NewVariable creates a new anonymous variable.
func NewVariable() *Variable {
	v := &Variable{id: atomic.AddInt64(&varCounter, 1)}
	v.init(v)
	return v
}

// NewNamedVariable creates a new variable carrying a display name.
func NewNamedVariable(name string) *Variable {
	v := NewVariable()
	v.name = name
	return v
}

func (v *Variable) String() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprintf("_%d", v.id)
}
