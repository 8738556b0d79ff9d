// Validate predictor hot path - measures allocations per predict/commit pair
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/timing/bpred"
)

func main() {
	config := bpred.DefaultConfig()
	config.Scheme = bpred.SchemeCombining

	bp, err := bpred.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in predictor config: %v\n", err)
		os.Exit(1)
	}

	decoder := insts.NewDecoder()
	branches := []bpred.BranchInfo{
		{PC: 0x1000, Class: decoder.Decode(0x54000080).Class}, // B.EQ +16
		{PC: 0x1010, Class: decoder.Decode(0x94000080).Class}, // BL +0x200
		{PC: 0x1210, Class: decoder.Decode(0xD65F03C0).Class}, // RET
		{PC: 0x1014, Class: decoder.Decode(0xB4000080).Class}, // CBZ X0, +16
	}
	outcomes := []bpred.Outcome{
		{Taken: true, Target: 0x1010},
		{Taken: true, Target: 0x1210},
		{Taken: true, Target: 0x1014},
		{Taken: false, Target: 0x1024},
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		for j, b := range branches {
			_, rec := bp.Predict(b)
			bp.Commit(rec, outcomes[j])
		}
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	iterations := 100000

	for i := 0; i < iterations; i++ {
		for j, b := range branches {
			_, rec := bp.Predict(b)
			bp.Commit(rec, outcomes[j])
		}
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	total := iterations * len(branches)
	allocations := m2.Mallocs - m1.Mallocs
	allocatedBytes := m2.TotalAlloc - m1.TotalAlloc

	fmt.Printf("Predictor Hot Path Validation Results:\n")
	fmt.Printf("======================================\n")
	fmt.Printf("Predict/commit pairs: %d\n", total)
	fmt.Printf("Time elapsed: %v\n", elapsed)
	fmt.Printf("Pairs per second: %.0f\n", float64(total)/elapsed.Seconds())
	fmt.Printf("Allocations: %d\n", allocations)
	fmt.Printf("Allocated bytes: %d\n", allocatedBytes)
	fmt.Printf("Allocations per pair: %.3f\n", float64(allocations)/float64(total))
	fmt.Printf("Bytes per pair: %.1f\n", float64(allocatedBytes)/float64(total))
	fmt.Printf("Accuracy: %.2f%%\n", bp.Stats().Accuracy())

	// One record per prediction is expected.
	if float64(allocations)/float64(total) <= 1.0 {
		fmt.Printf("\nGOOD: at most one allocation per prediction\n")
	} else {
		fmt.Printf("\nWARNING: more than one allocation per prediction\n")
	}
}
