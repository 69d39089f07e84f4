package train

import (
	"fmt"
	"log"

	"github.com/evolab/engine/eval"
	"github.com/evolab/engine/evolve"
	"github.com/evolab/engine/gen"
)

// Trainer runs an Evolver to a termination condition, printing progress
// and writing checkpoints along the way. Grounded on train/trainer.rs's
// evolve() loop and on the teacher's EvolutionEngine logging conventions.
type Trainer struct {
	Cfg Cfg
}

// New returns a Trainer configured by c.
func New(c Cfg) *Trainer {
	return &Trainer{Cfg: c}
}

// Evolve drives ev to termination using no external training data.
func Evolve[S gen.State[S], D eval.Data](t *Trainer, ev *evolve.Evolver[S, D]) (*evolve.EvolveResult[S], error) {
	var zero D
	return EvolveData(t, ev, []D{zero})
}

// EvolveData drives ev to termination, passing inputs to RunData every
// generation.
func EvolveData[S gen.State[S], D eval.Data](t *Trainer, ev *evolve.Evolver[S, D], inputs []D) (*evolve.EvolveResult[S], error) {
	var last *evolve.EvolveResult[S]

	for i := 0; ; i++ {
		if t.Cfg.Termination.Kind == FixedGenerations && i >= t.Cfg.Termination.Generations {
			break
		}

		result, err := ev.RunData(inputs)
		if err != nil {
			return nil, fmt.Errorf("train[%s]: generation %d: %w", t.Cfg.Name, i, err)
		}

		if t.Cfg.PrintGenEvery > 0 && i%t.Cfg.PrintGenEvery == 0 {
			log.Printf("train[%s] generation %d: best=%.6f", t.Cfg.Name, i, result.Nth(0).Fitness)
		}
		if t.Cfg.PrintSummaryEvery > 0 && i%t.Cfg.PrintSummaryEvery == 0 {
			log.Printf("train[%s] %s", t.Cfg.Name, ev.Summary(result))
		}
		if t.Cfg.PrintSamplesEvery > 0 && i%t.Cfg.PrintSamplesEvery == 0 {
			for _, m := range ev.SummarySample(result, 5) {
				log.Printf("train[%s] sample: fitness=%.6f state=%s", t.Cfg.Name, m.Fitness, m.State)
			}
		}
		if t.Cfg.CheckpointEvery > 0 && i%t.Cfg.CheckpointEvery == 0 {
			if err := gen.Snapshot(ev.Current(), t.Cfg.CheckpointPath); err != nil {
				return nil, fmt.Errorf("train[%s]: checkpoint at generation %d: %w", t.Cfg.Name, i, err)
			}
		}

		last = result
	}

	if last == nil {
		return nil, fmt.Errorf("train[%s]: termination condition allowed zero generations", t.Cfg.Name)
	}
	return last, nil
}
