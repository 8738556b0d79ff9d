// Package benchmarks provides the workload harness for comparing branch
// predictor configurations.
package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/trace"
)

// BenchmarkResult holds the results of one workload on one scheme.
type BenchmarkResult struct {
	// Name identifies the workload
	Name string `json:"name"`

	// Description explains what the workload stresses
	Description string `json:"description"`

	// Scheme is the direction predictor the workload ran on
	Scheme string `json:"scheme"`

	// Branches is the number of predicted control instructions
	Branches uint64 `json:"branches"`

	// Mispredictions is the number of wrong directions
	Mispredictions uint64 `json:"mispredictions"`

	// AccuracyPercent is the direction accuracy
	AccuracyPercent float64 `json:"accuracy_percent"`

	// AddrAccuracyPercent is the next-fetch address accuracy
	AddrAccuracyPercent float64 `json:"addr_accuracy_percent"`

	// BTB and return stack rates
	BTBHitRate float64 `json:"btb_hit_rate"`
	RASHitRate float64 `json:"ras_hit_rate,omitempty"`

	// PenaltyCycles is the fetch time lost to redirects
	PenaltyCycles uint64 `json:"penalty_cycles"`

	// WallTime is the actual time taken to replay the workload
	WallTime time.Duration `json:"wall_time_ns"`
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Schemes lists the direction predictors to compare
	Schemes []bpred.Scheme

	// Predictor holds the parameters shared by every scheme
	Predictor *bpred.Config

	// Window is the number of branches in flight during replay
	Window int

	// Parallel bounds concurrent replays (default: GOMAXPROCS)
	Parallel int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose prints each predictor's configuration
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Schemes:   bpred.Schemes(),
		Predictor: bpred.DefaultConfig(),
		Window:    1,
		Output:    os.Stdout,
		Verbose:   false,
	}
}

// Harness replays workloads against predictors and reports results.
type Harness struct {
	config    HarnessConfig
	workloads []Workload
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Predictor == nil {
		config.Predictor = bpred.DefaultConfig()
	}
	if config.Parallel <= 0 {
		config.Parallel = runtime.GOMAXPROCS(0)
	}
	return &Harness{
		config:    config,
		workloads: []Workload{},
	}
}

// AddWorkload adds a workload to the harness.
func (h *Harness) AddWorkload(w Workload) {
	h.workloads = append(h.workloads, w)
}

// AddWorkloads adds multiple workloads to the harness.
func (h *Harness) AddWorkloads(workloads []Workload) {
	h.workloads = append(h.workloads, workloads...)
}

// RunAll replays every workload on every scheme, each on a fresh predictor.
// Results are ordered by workload, then by scheme.
func (h *Harness) RunAll(ctx context.Context) ([]BenchmarkResult, error) {
	schemes := h.config.Schemes
	results := make([]BenchmarkResult, len(h.workloads)*len(schemes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Parallel)

	for i, w := range h.workloads {
		for j, s := range schemes {
			g.Go(func() error {
				r, err := h.runWorkload(ctx, w, s)
				if err != nil {
					return err
				}
				results[i*len(schemes)+j] = r
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (h *Harness) newPredictor(scheme bpred.Scheme) (*bpred.Predictor, error) {
	config := h.config.Predictor.Clone()
	config.Scheme = scheme
	return bpred.New(config)
}

// runWorkload replays a single workload.
func (h *Harness) runWorkload(
	ctx context.Context,
	w Workload,
	scheme bpred.Scheme,
) (BenchmarkResult, error) {
	bp, err := h.newPredictor(scheme)
	if err != nil {
		return BenchmarkResult{}, fmt.Errorf("scheme %s: %w", scheme, err)
	}

	start := time.Now()
	res, err := trace.Replay(ctx, trace.NewSliceSource(w.Records), bp,
		trace.Options{Window: h.config.Window})
	if err != nil {
		return BenchmarkResult{}, fmt.Errorf("workload %s on %s: %w", w.Name, scheme, err)
	}
	wallTime := time.Since(start)

	stats := res.Stats
	return BenchmarkResult{
		Name:                w.Name,
		Description:         w.Description,
		Scheme:              scheme.String(),
		Branches:            res.Branches,
		Mispredictions:      res.Mispredicts,
		AccuracyPercent:     stats.Accuracy(),
		AddrAccuracyPercent: stats.AddrAccuracy(),
		BTBHitRate:          stats.BTBHitRate(),
		RASHitRate:          stats.RASHitRate(),
		PenaltyCycles:       res.PenaltyCycles,
		WallTime:            wallTime,
	}, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out, "=== Branch Predictor Benchmark Results ===")
	_, _ = fmt.Fprintln(out, "")

	if h.config.Verbose {
		for _, s := range h.config.Schemes {
			bp, err := h.newPredictor(s)
			if err != nil {
				_, _ = fmt.Fprintf(out, "%s: %v\n", s, err)
				continue
			}
			_, _ = fmt.Fprint(out, bp.Describe())
		}
		_, _ = fmt.Fprintln(out, "")
	}

	last := ""
	for _, r := range results {
		if r.Name != last {
			_, _ = fmt.Fprintf(out, "Workload: %s\n", r.Name)
			_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
			_, _ = fmt.Fprintf(out, "  Branches: %d\n", r.Branches)
			last = r.Name
		}
		_, _ = fmt.Fprintf(out, "  %-9s accuracy %6.2f%%  addr %6.2f%%  btb %6.2f%%  ras %6.2f%%  penalty %d\n",
			r.Scheme,
			r.AccuracyPercent,
			r.AddrAccuracyPercent,
			r.BTBHitRate,
			r.RASHitRate,
			r.PenaltyCycles,
		)
	}
	_, _ = fmt.Fprintln(out, "")
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,scheme,branches,mispredictions,accuracy,addr_accuracy,btb_hit_rate,ras_hit_rate,penalty_cycles")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%.3f,%.3f,%.3f,%.3f,%d\n",
			r.Name,
			r.Scheme,
			r.Branches,
			r.Mispredictions,
			r.AccuracyPercent,
			r.AddrAccuracyPercent,
			r.BTBHitRate,
			r.RASHitRate,
			r.PenaltyCycles,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Version of the simulator
	Version string `json:"version"`

	// Window is the number of branches in flight
	Window int `json:"window"`

	// Predictor holds the shared predictor parameters
	Predictor *bpred.Config `json:"predictor"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalRuns is the number of workload/scheme pairs run
	TotalRuns int `json:"total_runs"`

	// SchemeAccuracy is the branch-weighted direction accuracy per scheme
	SchemeAccuracy map[string]float64 `json:"scheme_accuracy"`

	// TotalWallTime is the total wall clock time for all runs
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize computes aggregate statistics over results.
func Summarize(results []BenchmarkResult) ReportSummary {
	branches := map[string]uint64{}
	misses := map[string]uint64{}
	var totalWallTime time.Duration

	for _, r := range results {
		branches[r.Scheme] += r.Branches
		misses[r.Scheme] += r.Mispredictions
		totalWallTime += r.WallTime
	}

	accuracy := make(map[string]float64, len(branches))
	for scheme, n := range branches {
		if n == 0 {
			accuracy[scheme] = 0
			continue
		}
		accuracy[scheme] = float64(n-misses[scheme]) / float64(n) * 100
	}

	return ReportSummary{
		TotalRuns:      len(results),
		SchemeAccuracy: accuracy,
		TotalWallTime:  totalWallTime,
	}
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
			Window:    h.config.Window,
			Predictor: h.config.Predictor,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// Version is reported in JSON output.
const Version = "0.1.0"
