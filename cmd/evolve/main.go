// Package main provides the evolve CLI for running the generational
// evolutionary-computation engine against one of the built-in example
// scenarios.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/evolab/engine/config"
	"github.com/evolab/engine/evolve"
	"github.com/evolab/engine/examples"
	"github.com/evolab/engine/train"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	scenario        string
	configPath      string
	generations     int
	seed            int64
	checkpointPath  string
	checkpointEvery int
	verbose         bool
	showVersion     bool
)

func init() {
	flag.StringVar(&scenario, "scenario", "target-string", "Example scenario to run (target-string, knapsack)")
	flag.StringVar(&configPath, "config", "", "Path to a TOML run configuration (default: built-in scenario defaults)")
	flag.IntVar(&generations, "generations", 0, "Number of generations to evolve (0 = use config default)")
	flag.Int64Var(&seed, "seed", 0, "Random seed (0 = use current time)")
	flag.StringVar(&checkpointPath, "checkpoint", "", "Path to write periodic checkpoints")
	flag.IntVar(&checkpointEvery, "checkpoint-every", 0, "Checkpoint every N generations (0 = disabled)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose per-generation output")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("evolve %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trainCfg := train.NewCfg(scenario)
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		trainCfg = c.Train.ToTrainCfg()
	}
	if generations > 0 {
		trainCfg.Termination = train.NewFixedGenerations(generations)
	}
	if checkpointEvery > 0 {
		trainCfg.CheckpointEvery = checkpointEvery
		trainCfg.CheckpointPath = checkpointPath
	}
	if verbose && trainCfg.PrintGenEvery == 0 {
		trainCfg.PrintGenEvery = 1
	}

	printBanner(trainCfg)

	startTime := time.Now()
	var err error
	switch scenario {
	case "target-string":
		err = runTargetString(trainCfg)
	case "knapsack":
		err = runKnapsack(trainCfg)
	default:
		err = fmt.Errorf("unknown scenario %q (want target-string or knapsack)", scenario)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nevolution failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nEvolution complete in %s\n", formatDuration(time.Since(startTime)))
}

func runTargetString(trainCfg train.Cfg) error {
	ev, err := evolve.New[examples.TargetStringState, struct{}](
		examples.TargetStringEvaluator{}, examples.TargetStringEvolveCfg(), seed, examples.RandTargetStringState)
	if err != nil {
		return fmt.Errorf("building evolver: %w", err)
	}

	tr := train.New(trainCfg)
	result, err := train.Evolve(tr, ev)
	if err != nil {
		return err
	}

	fmt.Printf("Best fitness: %.6f\n", result.Nth(0).Fitness)
	fmt.Printf("Best state:   %q\n", string(result.Nth(0).State))
	return nil
}

func runKnapsack(trainCfg train.Cfg) error {
	items := examples.KnapsackItems(rand.New(rand.NewSource(seed)))
	ev, err := evolve.New[examples.KnapsackState, struct{}](
		examples.KnapsackEvaluator{Items: items}, examples.KnapsackEvolveCfg(), seed, examples.RandKnapsackState)
	if err != nil {
		return fmt.Errorf("building evolver: %w", err)
	}

	tr := train.New(trainCfg)
	result, err := train.Evolve(tr, ev)
	if err != nil {
		return err
	}

	fmt.Printf("Best fitness: %.6f\n", result.Nth(0).Fitness)
	return nil
}

func printBanner(c train.Cfg) {
	fmt.Println()
	fmt.Println("==================================================================")
	fmt.Println("                   Evolutionary Computation Engine")
	fmt.Println("==================================================================")
	fmt.Println()
	fmt.Printf("  Scenario:    %s\n", scenario)
	fmt.Printf("  Seed:        %d\n", seed)
	fmt.Printf("  Generations: %d\n", c.Termination.Generations)
	if c.CheckpointEvery > 0 {
		fmt.Printf("  Checkpoint:  every %d generations -> %s\n", c.CheckpointEvery, c.CheckpointPath)
	}
	fmt.Println()
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
