// Command benchmark runs the branch predictor workload harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results in JSON format
//	-schemes    Comma-separated schemes to compare (default: all)
//	-config     Predictor configuration JSON shared by every scheme
//	-window     Branches in flight during replay
//	-quick      Run the core workloads only
//
// Example:
//
//	# Compare every scheme with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv -schemes bimod,gshare > results.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/bpsim/benchmarks"
	"github.com/sarchlab/bpsim/timing/bpred"
)

func main() {
	// Parse flags
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	schemeList := flag.String("schemes", "", "Comma-separated schemes to compare (default: all)")
	configPath := flag.String("config", "", "Predictor configuration JSON shared by every scheme")
	window := flag.Int("window", 1, "Branches in flight during replay")
	quick := flag.Bool("quick", false, "Run the core workloads only")
	verbose := flag.Bool("v", false, "Print each predictor's configuration")
	flag.Parse()

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.Window = *window
	config.Verbose = *verbose
	config.Output = os.Stdout

	if *configPath != "" {
		predictor, err := bpred.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading predictor config: %v\n", err)
			os.Exit(1)
		}
		config.Predictor = predictor
	}

	if *schemeList != "" {
		schemes, err := parseSchemes(*schemeList)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		config.Schemes = schemes
	}

	// Create harness and add workloads
	harness := benchmarks.NewHarness(config)
	if *quick {
		harness.AddWorkloads(benchmarks.GetCoreWorkloads())
	} else {
		harness.AddWorkloads(benchmarks.GetWorkloads())
	}

	// Print configuration
	if !*csvOutput && !*jsonOutput {
		fmt.Println("Branch Predictor Benchmark Harness")
		fmt.Println("==================================")
		fmt.Printf("Schemes: %s\n", joinSchemes(config.Schemes))
		fmt.Printf("Window:  %d\n", config.Window)
		fmt.Println("")
	}

	// Run workloads
	results, err := harness.RunAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Output results
	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		fmt.Println("=== Summary ===")
		summary := benchmarks.Summarize(results)
		for _, s := range config.Schemes {
			fmt.Printf("  %-9s %6.2f%%\n", s, summary.SchemeAccuracy[s.String()])
		}
	}
}

func parseSchemes(list string) ([]bpred.Scheme, error) {
	var schemes []bpred.Scheme
	for _, name := range strings.Split(list, ",") {
		s, err := bpred.ParseScheme(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, s)
	}
	return schemes, nil
}

func joinSchemes(schemes []bpred.Scheme) string {
	names := make([]string, len(schemes))
	for i, s := range schemes {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}
