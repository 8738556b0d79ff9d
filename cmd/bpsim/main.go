// Package main provides the bpsim command, which replays a branch trace
// against a configurable branch predictor and reports its statistics.
//
// Usage:
//
//	bpsim [options] <trace>
//
// A trace path of "-" reads standard input. Flags override the values of
// the -config file, which in turn override the defaults.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sarchlab/bpsim/timing/bpred"
	"github.com/sarchlab/bpsim/trace"
)

const progressEvery = 100000

var (
	configPath = flag.String("config", "", "Path to predictor configuration JSON file")
	scheme     = flag.String("scheme", "", "Predictor scheme: taken, nottaken, bimod, 2lev, comb, gshare")
	bimodSize  = flag.Uint("bimod", 0, "Bimodal (and gshare) table entries")
	l1Size     = flag.Uint("l1", 0, "Two-level first level history registers")
	l2Size     = flag.Uint("l2", 0, "Two-level second level counters")
	metaSize   = flag.Uint("meta", 0, "Combining meta table entries")
	history    = flag.Uint("hist", 0, "History register width in bits")
	xor        = flag.Bool("xor", false, "XOR history with the PC in the two-level index")
	btbSets    = flag.Uint("btb-sets", 0, "BTB sets")
	btbAssoc   = flag.Uint("btb-assoc", 0, "BTB associativity")
	rasSize    = flag.Uint("ras", 0, "Return address stack entries (0 disables)")
	window     = flag.Int("window", 1, "Branches in flight before the oldest commits")
	dumpConfig = flag.String("dump-config", "", "Write the effective configuration to this path and exit")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	config, err := loadConfig()
	if err != nil {
		var cfgErr *bpred.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Error in predictor config: %v\n", cfgErr)
		} else {
			fmt.Fprintf(os.Stderr, "Error loading predictor config: %v\n", err)
		}
		os.Exit(1)
	}

	if *dumpConfig != "" {
		if err := config.SaveConfig(*dumpConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: bpsim [options] <trace>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	bp, err := bpred.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in predictor config: %v\n", err)
		os.Exit(1)
	}

	tracePath := flag.Arg(0)
	input, closeInput, err := openTrace(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
		os.Exit(1)
	}
	defer closeInput()

	if *verbose {
		fmt.Printf("Trace: %s\n", tracePath)
		fmt.Print(bp.Describe())
		fmt.Println()
	}

	opts := trace.Options{Window: *window}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		opts.ProgressEvery = progressEvery
		opts.Progress = func(done uint64) {
			fmt.Fprintf(os.Stderr, "\rreplayed %d records", done)
		}
	}

	res, err := trace.Replay(context.Background(), trace.NewReader(input), bp, opts)
	if opts.Progress != nil && res.Records >= progressEvery {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying trace: %v\n", err)
		os.Exit(1)
	}

	printReport(os.Stdout, tracePath, config, res)
}

// loadConfig builds the effective configuration: defaults, then the
// -config file, then flags given on the command line.
func loadConfig() (*bpred.Config, error) {
	config := bpred.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = bpred.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	if err := applyOverrides(config, set); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// applyOverrides copies every explicitly set flag into config.
func applyOverrides(config *bpred.Config, set map[string]bool) error {
	if set["scheme"] {
		s, err := bpred.ParseScheme(*scheme)
		if err != nil {
			return err
		}
		config.Scheme = s
	}

	sizes := []struct {
		name  string
		value *uint
		field *uint32
	}{
		{"bimod", bimodSize, &config.BimodSize},
		{"l1", l1Size, &config.L1Size},
		{"l2", l2Size, &config.L2Size},
		{"meta", metaSize, &config.MetaSize},
		{"hist", history, &config.HistoryWidth},
		{"btb-sets", btbSets, &config.BTBSets},
		{"btb-assoc", btbAssoc, &config.BTBAssoc},
		{"ras", rasSize, &config.RASSize},
	}
	for _, s := range sizes {
		if set[s.name] {
			*s.field = uint32(*s.value)
		}
	}

	if set["xor"] {
		config.XOR = *xor
	}
	return nil
}

func openTrace(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// printReport writes the replay summary and predictor statistics.
func printReport(w io.Writer, tracePath string, config *bpred.Config, res trace.Result) {
	stats := res.Stats

	_, _ = fmt.Fprintf(w, "Trace: %s\n", tracePath)
	_, _ = fmt.Fprintf(w, "Scheme: %s\n", config.Scheme)
	_, _ = fmt.Fprintf(w, "Records: %d\n", res.Records)
	_, _ = fmt.Fprintf(w, "Branches: %d\n", res.Branches)
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Direction:\n")
	_, _ = fmt.Fprintf(w, "  Correct:         %d\n", stats.Correct)
	_, _ = fmt.Fprintf(w, "  Mispredictions:  %d\n", stats.Mispredictions)
	_, _ = fmt.Fprintf(w, "  Accuracy:        %.2f%%\n", stats.Accuracy())
	_, _ = fmt.Fprintf(w, "Address:\n")
	_, _ = fmt.Fprintf(w, "  Hits:            %d\n", stats.AddrHits)
	_, _ = fmt.Fprintf(w, "  Accuracy:        %.2f%%\n", stats.AddrAccuracy())
	_, _ = fmt.Fprintf(w, "  Penalty cycles:  %d\n", res.PenaltyCycles)

	if !config.Scheme.IsStatic() {
		_, _ = fmt.Fprintf(w, "BTB:\n")
		_, _ = fmt.Fprintf(w, "  Hits:            %d\n", stats.BTBHits)
		_, _ = fmt.Fprintf(w, "  Misses:          %d\n", stats.BTBMisses)
		_, _ = fmt.Fprintf(w, "  Hit rate:        %.2f%%\n", stats.BTBHitRate())
	}

	if stats.RASPushes > 0 || stats.RASPops > 0 {
		_, _ = fmt.Fprintf(w, "Return stack:\n")
		_, _ = fmt.Fprintf(w, "  Pushes:          %d\n", stats.RASPushes)
		_, _ = fmt.Fprintf(w, "  Pops:            %d\n", stats.RASPops)
		_, _ = fmt.Fprintf(w, "  Hit rate:        %.2f%%\n", stats.RASHitRate())
	}

	if config.Scheme == bpred.SchemeCombining {
		_, _ = fmt.Fprintf(w, "Combining:\n")
		_, _ = fmt.Fprintf(w, "  Used bimodal:    %d\n", stats.UsedBimodal)
		_, _ = fmt.Fprintf(w, "  Used two-level:  %d\n", stats.UsedTwoLevel)
	}

	if stats.IndirectSeen > 0 {
		_, _ = fmt.Fprintf(w, "Indirect jumps:\n")
		_, _ = fmt.Fprintf(w, "  Seen:            %d\n", stats.IndirectSeen)
		_, _ = fmt.Fprintf(w, "  Accuracy:        %.2f%%\n", stats.IndirectAccuracy())
		_, _ = fmt.Fprintf(w, "  Non-stack seen:  %d\n", stats.IndirectNonRASSeen)
		_, _ = fmt.Fprintf(w, "  Non-stack hits:  %d\n", stats.IndirectNonRASHits)
	}
}
