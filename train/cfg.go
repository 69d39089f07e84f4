// Package train provides the Trainer driving loop: repeatedly calling an
// Evolver's RunIter/RunData until a termination condition is met, with
// periodic console reporting and checkpointing. Grounded on
// _examples/original_source/src/train/{cfg,trainer}.rs.
package train

// TerminationKind enumerates the ways a training run can end.
type TerminationKind int

const (
	// FixedGenerations stops after a set number of generations.
	FixedGenerations TerminationKind = iota
)

// Termination is a stop condition plus its parameter.
type Termination struct {
	Kind        TerminationKind
	Generations int
}

// NewFixedGenerations returns a Termination that stops after n generations.
func NewFixedGenerations(n int) Termination {
	return Termination{Kind: FixedGenerations, Generations: n}
}

// Cfg controls a Trainer run: how long to train and how often to report
// progress. Zero values for the Every fields disable that kind of report.
type Cfg struct {
	Name        string
	Termination Termination

	PrintGenEvery     int // print best fitness every N generations; 0 disables
	PrintSummaryEvery int // print full Evolver.Summary every N generations; 0 disables
	PrintSamplesEvery int // print Evolver.SummarySample every N generations; 0 disables

	CheckpointEvery int    // snapshot the unevaluated generation every N generations; 0 disables
	CheckpointPath  string // required if CheckpointEvery > 0
}

// NewCfg returns a Cfg named name, training for 2000 generations with all
// reporting and checkpointing disabled.
func NewCfg(name string) Cfg {
	return Cfg{Name: name, Termination: NewFixedGenerations(2000)}
}
