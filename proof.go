package nonterm

import (
	"fmt"
	"strings"

	"github.com/trsproofs/nonterm/engine"
)

// Result is the three-valued verdict of a proof run.
type Result int

const (
	// ResultMaybe means no strategy reached a conclusion within budget.
	ResultMaybe Result = iota
	// ResultYes means every rewriting sequence is finite.
	ResultYes
	// ResultNo means an infinite rewriting sequence exists.
	ResultNo
)

func (r Result) String() string {
	switch r {
	case ResultYes:
		return "YES"
	case ResultNo:
		return "NO"
	default:
		return "MAYBE"
	}
}

// Proof is the outcome of a prover run: the verdict, the loop witness for
// a NO, and the derivation trail explaining how the verdict was reached.
type Proof struct {
	Result  Result
	Witness *engine.LoopWitness
	Trail   []string
}

func maybeProof(lines ...string) *Proof {
	return &Proof{Result: ResultMaybe, Trail: lines}
}

// Append adds a line to the derivation trail.
func (p *Proof) Append(format string, args ...interface{}) {
	p.Trail = append(p.Trail, fmt.Sprintf(format, args...))
}

func (p *Proof) String() string {
	var sb strings.Builder
	sb.WriteString(p.Result.String())
	for _, line := range p.Trail {
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}
