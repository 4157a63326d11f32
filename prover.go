// Package nonterm decides or refutes termination of first-order term
// rewriting systems: it either certifies that every rewriting sequence is
// finite, or produces a witness of an infinite one, searching with
// several strategies concurrently under a single wall-clock budget.
package nonterm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/trsproofs/nonterm/engine"
	"github.com/trsproofs/nonterm/internal/pool"
)

// Config tunes a Prover. The zero value is usable; unset fields get
// defaults.
type Config struct {
	// Timeout is the global wall-clock budget for the whole run.
	Timeout time.Duration
	// MaxIterations bounds the unfolding depth per search.
	MaxIterations int
	// Strategies are the non-termination configurations tried in
	// sequence by the search task.
	Strategies []engine.ElimStrategy
	// Backward also unfolds rules backward.
	Backward bool
	// FilterLimit bounds the argument-filtering enumeration.
	FilterLimit int
	// SkipFilteredTask disables the argument-filtering task.
	SkipFilteredTask bool
	// SkipSearchTask disables the unfolding search task.
	SkipSearchTask bool
	// Pattern, if set, is consulted for non-looping witnesses after the
	// loop search comes up empty.
	Pattern PatternProver
	// Logger receives progress at debug level and verdicts at info
	// level.
	Logger *logrus.Logger
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 3
	}
	if len(c.Strategies) == 0 {
		c.Strategies = []engine.ElimStrategy{engine.UnfoldAll}
	}
	if c.FilterLimit <= 0 {
		c.FilterLimit = 16
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	return c
}

// Prover runs the proof orchestration for one rewrite system at a time.
// A single Prover may be reused; the embedding checker it shares across
// tasks is stateless.
type Prover struct {
	cfg Config
	log *logrus.Logger
	emb engine.Embedding
}

// New creates a prover.
func New(cfg Config) *Prover {
	cfg = cfg.withDefaults()
	return &Prover{cfg: cfg, log: cfg.Logger}
}

type taskResult struct {
	name  string
	proof *Proof
}

// Prove decides or refutes termination of trs within the configured
// budget. The result is always YES, NO with a witness, or MAYBE; a
// failing search never surfaces as an error.
func (p *Prover) Prove(trs *engine.Trs) *Proof {
	if r, ok := trs.Generalized(); ok {
		proof := &Proof{
			Result:  ResultNo,
			Witness: &engine.LoopWitness{Rule: &engine.UnfoldedRule{RuleTrs: r}, Kind: engine.WitnessGeneralized},
		}
		proof.Append("rule %s introduces fresh variables on the right side", r)
		p.log.WithField("result", proof.Result).Info("proved by generalized rule")
		return proof
	}

	dp := engine.NewDpairs(trs)
	graph := engine.NewDependencyGraph(trs, dp)
	problems := graph.Problems(trs)
	p.log.WithFields(logrus.Fields{
		"rules":      trs.Len(),
		"pairs":      dp.Len(),
		"components": problems.Len(),
	}).Debug("dependency graph built")

	if problems.Len() == 0 {
		proof := &Proof{Result: ResultYes}
		proof.Append("the dependency graph has no cycles")
		return proof
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	type task struct {
		name string
		run  func(context.Context) *Proof
	}
	// Each task gets its own deep copy, taken here on the caller thread:
	// the union-find term graph must never cross a task boundary by
	// reference.
	var tasks []task
	if !p.cfg.SkipSearchTask {
		local := problems.ShallowCopy()
		tasks = append(tasks, task{name: "search", run: func(ctx context.Context) *Proof {
			return p.searchTask(ctx, local)
		}})
	}
	if !p.cfg.SkipFilteredTask {
		local := problems.ShallowCopy()
		tasks = append(tasks, task{name: "filtered", run: func(ctx context.Context) *Proof {
			return p.filteredTask(ctx, local)
		}})
	}
	if len(tasks) == 0 {
		return maybeProof("all tasks disabled")
	}

	workers := pool.New(2)
	defer workers.Shutdown()

	results := make(chan taskResult, len(tasks))
	pending := 0
	for _, t := range tasks {
		t := t
		if err := workers.Submit(ctx, func() {
			results <- taskResult{name: t.name, proof: t.run(ctx)}
		}); err != nil {
			continue
		}
		pending++
	}

	return p.collect(ctx, cancel, results, pending)
}

// collect polls for task completion: results come in completion order and
// the first conclusive one wins and cancels the rest. A verdict drained
// after the wall-clock deadline belongs to a cancelled task and is
// discarded, so budget expiry always reports MAYBE.
func (p *Prover) collect(ctx context.Context, cancel context.CancelFunc, results <-chan taskResult, pending int) *Proof {
	var final *Proof
	expired := false
	done := ctx.Done()
	for pending > 0 {
		select {
		case res := <-results:
			pending--
			if err := ctx.Err(); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					expired = true
				}
				continue
			}
			if res.proof.Result != ResultMaybe && final == nil {
				final = res.proof
				p.log.WithFields(logrus.Fields{
					"task":   res.name,
					"result": res.proof.Result,
				}).Info("task finished first with a verdict")
				cancel()
			}
		case <-done:
			done = nil
			expired = true
			cancel()
		}
	}
	if final != nil {
		return final
	}
	if expired {
		return maybeProof("wall-clock budget exhausted")
	}
	return maybeProof("all strategies inconclusive")
}

// searchTask runs the termination pipeline without argument filtering,
// then the non-termination configurations in sequence, on private copies
// of the problems.
func (p *Prover) searchTask(ctx context.Context, problems *engine.DpProbCollection) *Proof {
	if runPipeline(problems.ShallowCopy().Problems(), p.processors()) {
		proof := &Proof{Result: ResultYes}
		proof.Append("termination pipeline proved all %d components finite", problems.Len())
		return proof
	}
	for _, strat := range p.cfg.Strategies {
		w, err := p.loopSearch(ctx, problems, strat)
		if err != nil {
			return maybeProof("unfolding search cancelled")
		}
		if w != nil {
			proof := &Proof{Result: ResultNo, Witness: w}
			for _, line := range w.Rule.Derivation() {
				proof.Append("%s", line)
			}
			proof.Append("%s", w.String())
			return proof
		}
	}
	if p.cfg.Pattern != nil {
		for it := 0; it <= p.cfg.MaxIterations; it++ {
			if ctx.Err() != nil {
				return maybeProof("pattern search cancelled")
			}
			for _, pr := range p.cfg.Pattern.Unfold(it) {
				if p.cfg.Pattern.Unifiable(pr) {
					proof := &Proof{Result: ResultNo}
					proof.Append("non-looping pattern rule %s at iteration %d", pr, it)
					return proof
				}
			}
		}
	}
	return maybeProof("no loop witness within the iteration bound")
}

var errWitnessFound = errors.New("witness found")

// loopSearch unfolds every problem of the collection under one strategy.
// The problems run concurrently, each on its own deep copy; the first
// witness cancels the siblings.
func (p *Prover) loopSearch(ctx context.Context, problems *engine.DpProbCollection, strat engine.ElimStrategy) (*engine.LoopWitness, error) {
	g, gctx := errgroup.WithContext(ctx)
	var (
		mu    sync.Mutex
		found *engine.LoopWitness
	)
	for _, prob := range problems.Problems() {
		prob := prob.ShallowCopy()
		g.Go(func() error {
			un := engine.NewUnfolder(prob, strat, p.cfg.Backward, p.cfg.MaxIterations, p.emb, p.log)
			w, err := un.Search(gctx)
			if err != nil {
				return err
			}
			if w != nil {
				mu.Lock()
				if found == nil {
					found = w
				}
				mu.Unlock()
				return errWitnessFound
			}
			return nil
		})
	}
	err := g.Wait()
	if found != nil {
		return found, nil
	}
	if err != nil && !errors.Is(err, errWitnessFound) {
		return nil, err
	}
	return nil, nil
}

// filteredTask enumerates argument filterings per problem and runs only
// the termination pipeline on the filtered problems.
func (p *Prover) filteredTask(ctx context.Context, problems *engine.DpProbCollection) *Proof {
	for _, prob := range problems.Problems() {
		solved := false
		for _, f := range EnumerateFilterings(prob, p.cfg.FilterLimit) {
			if ctx.Err() != nil {
				return maybeProof("filtered task cancelled")
			}
			fp, err := f.ApplyProblem(prob)
			if err != nil {
				continue // this filtering collapses a left side
			}
			if runPipeline([]*engine.DpProblem{fp}, p.processors()) {
				solved = true
				break
			}
		}
		if !solved {
			return maybeProof("no argument filtering orients every component")
		}
	}
	proof := &Proof{Result: ResultYes}
	proof.Append("argument filtering plus termination pipeline proved all %d components finite", problems.Len())
	return proof
}

func (p *Prover) processors() []Processor {
	return []Processor{
		EmbeddingProcessor{Emb: p.emb},
		LpoProcessor{},
	}
}
