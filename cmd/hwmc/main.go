// Command hwmc checks a safety property encoded in an AIGER file against
// one of several reachability engines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gipsyh/aig-go/aiger"
	"github.com/gipsyh/aig-go/bdd"
	"github.com/gipsyh/aig-go/bruteforce"
	"github.com/gipsyh/aig-go/core"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("hwmc", flag.ContinueOnError)
	mode := fs.String("mode", "forward", "one of forward, backward, bmc, brute-force, bdd-hybrid")
	bmcDepth := fs.Int("bmc-depth", 64, "maximum unrolling depth for -mode=bmc")
	gcThreshold := fs.Int("gc-threshold", 100, "elimination-cost threshold that triggers garbage collection")
	timeout := fs.Duration("timeout", 0, "wall-clock budget; 0 disables the deadline")
	verbose := fs.Bool("v", false, "debug-level console output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hwmc -mode={forward|backward|bmc|brute-force|bdd-hybrid} path/to/file.aag")
		return 2
	}
	path := fs.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	f, err := os.Open(path)
	if err != nil {
		logger.Error("opening input", "path", path, "err", err)
		return 2
	}
	defer f.Close()

	parsed, err := aiger.Parse(f)
	if err != nil {
		logger.Error("parsing AIGER file", "path", path, "err", err)
		return 2
	}

	c := core.NewCircuit(core.WithFraig(), core.WithSolver(core.NewGiniSolver()))
	if err := aiger.Load(c, parsed); err != nil {
		logger.Error("loading AIGER file into circuit", "path", path, "err", err)
		return 2
	}
	stats := c.Stats()
	logger.Info("loaded circuit",
		"nodes", stats.NumNodes, "inputs", stats.NumInputs, "latches", stats.NumLatches,
		"ands", stats.NumAnds, "outputs", stats.NumOutputs, "bads", stats.NumBads)

	ctx := context.Background()
	var cancel context.CancelFunc
	if *timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	start := time.Now()
	verdict, iterations, err := runMode(ctx, c, *mode, *bmcDepth, *gcThreshold, logger)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("reachability run failed", "mode", *mode, "err", err)
		return 2
	}

	after := c.Stats()
	instr := c.Instrumentation()
	logger.Info("finished",
		"mode", *mode, "verdict", verdict.String(), "iterations", iterations,
		"elapsed", elapsed.String(), "nodes_before_gc", stats.NumNodes, "nodes_after_gc", after.NumNodes,
		"gc_runs", instr.GcRuns, "sat_calls", instr.SatCalls, "fraig_merges", instr.FraigMerges,
		"fraig_words", c.FraigWords(), "lazy_cex_rejects", instr.LazyCexRejects)
	fmt.Println(verdict.String())

	switch verdict {
	case core.Safe:
		return 0
	case core.Unsafe:
		return 1
	default:
		return 2
	}
}

func runMode(ctx context.Context, c *core.Circuit, mode string, bmcDepth, gcThreshold int, logger *slog.Logger) (core.Verdict, int, error) {
	opts := []core.ReachOption{core.WithGCThreshold(gcThreshold), core.WithLogger(logger), core.WithBMCDepth(bmcDepth)}
	switch mode {
	case "forward":
		r, err := c.Forward(ctx, opts...)
		return r.Verdict, r.Iterations, err
	case "backward":
		r, err := c.Backward(ctx, opts...)
		return r.Verdict, r.Iterations, err
	case "bmc":
		r, err := c.SATBased(ctx, opts...)
		return r.Verdict, r.Iterations, err
	case "brute-force":
		r, err := bruteforce.Explore(c)
		return r.Verdict, r.Depth, err
	case "bdd-hybrid":
		r, err := bdd.HybridForward(ctx, c, gcThreshold, 0)
		return r.Verdict, r.Iterations, err
	default:
		return core.Unknown, 0, fmt.Errorf("hwmc: unknown mode %q", mode)
	}
}
