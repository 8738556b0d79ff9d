package bpred

// dirLookup is what a direction lookup hands to the update record.
type dirLookup struct {
	// primary is the counter whose vote was used; secondary is the other
	// sub-predictor's counter (combining only).
	primary   CounterRef
	secondary CounterRef
	meta      CounterRef

	taken bool

	// Sub-predictor votes at lookup time (combining only).
	bimodTaken    bool
	twoLevelTaken bool
	usedTwoLevel  bool
}

// directory is one direction-predictor organization. Adding a scheme means
// adding an implementation and a case in newDirectory; the BTB, RAS and
// predict/commit logic never change.
type directory interface {
	// lookup reads the counters for pc without modifying any state.
	lookup(pc uint64) dirLookup
	// train applies a conditional branch outcome to the counters named in l
	// and advances any history registers.
	train(pc uint64, l dirLookup, taken bool)
	// reset restores the state found after construction.
	reset()
	// describe renders one configuration line per table.
	describe(name string) string
}

// newDirectory builds the direction predictor for the configured scheme.
func newDirectory(c *Config, tables *tableSet) (directory, error) {
	width := uint(c.CounterWidth)
	shift := uint(c.AddrShift)

	switch c.Scheme {
	case SchemeTaken:
		return &staticDirectory{taken: true}, nil
	case SchemeNotTaken:
		return &staticDirectory{taken: false}, nil
	case SchemeBimodal:
		return newBimodalDirectory(tables, "bimod_size", c.BimodSize, width, shift)
	case SchemeTwoLevel:
		return newTwoLevelDirectory(tables, c.L1Size, c.L2Size, c.HistoryWidth, c.XOR, width, shift)
	case SchemeGshare:
		return newGshareDirectory(tables, c.BimodSize, c.HistoryWidth, width, shift)
	case SchemeCombining:
		return newCombiningDirectory(tables, c, width, shift)
	default:
		return nil, newConfigError("scheme", c.Scheme, "is not a known predictor scheme")
	}
}
