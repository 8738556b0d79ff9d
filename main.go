// Package main provides the entry point for bpsim.
// bpsim is a branch prediction simulator for cycle-level CPU models.
//
// For the full CLI, use: go run ./cmd/bpsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("bpsim - Branch Prediction Simulator")
	fmt.Println("BTB built on the Akita cache directory")
	fmt.Println("")
	fmt.Println("Usage: bpsim [options] <trace>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to predictor configuration JSON file")
	fmt.Println("  -scheme    taken, nottaken, bimod, 2lev, comb or gshare")
	fmt.Println("  -window    Branches in flight before the oldest commits")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/bpsim' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' to compare schemes.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/bpsim' instead.")
	}
}
