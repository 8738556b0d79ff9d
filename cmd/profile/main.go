// Package main provides a profiling wrapper for bpsim to identify performance
// bottlenecks in the predictor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/bpsim/benchmarks"
	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/trace"
)

var (
	scheme     = flag.String("scheme", "comb", "Predictor scheme to profile")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	repeat     = flag.Int("repeat", 100, "times to replay the input")
	window     = flag.Int("window", 8, "branches in flight during replay")
)

func main() {
	flag.Parse()

	s, err := bpred.ParseScheme(*scheme)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	records, source, err := loadRecords()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trace: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded: %s (%d records)\n", source, len(records))

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	config := bpred.DefaultConfig()
	config.Scheme = s
	bp, err := bpred.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in predictor config: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	var branches uint64
	for i := 0; i < *repeat; i++ {
		res, err := trace.Replay(ctx, trace.NewSliceSource(records), bp,
			trace.Options{Window: *window})
		branches += res.Branches
		if err != nil {
			fmt.Printf("\nStopped after %v: %v\n", time.Since(start), err)
			break
		}
	}
	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	stats := bp.Stats()
	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Scheme: %s\n", s)
	fmt.Printf("Branches predicted: %d\n", branches)
	fmt.Printf("Accuracy: %.2f%%\n", stats.Accuracy())
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if branches > 0 {
		fmt.Printf("Branches/second: %.0f\n", float64(branches)/elapsed.Seconds())
	}
}

// loadRecords reads the trace named on the command line, or concatenates
// the standard workloads when none is given.
func loadRecords() ([]trace.Record, string, error) {
	if flag.NArg() < 1 {
		var records []trace.Record
		for _, w := range benchmarks.GetWorkloads() {
			records = append(records, w.Records...)
		}
		return records, "standard workloads", nil
	}

	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	records, err := trace.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return records, path, nil
}
