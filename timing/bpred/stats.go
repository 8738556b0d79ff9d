package bpred

// Stats holds the event counters of one predictor instance. Every counter
// only grows until Reset.
type Stats struct {
	// Predictions is the number of control instructions looked up.
	Predictions uint64
	// Updates is the number of committed records.
	Updates uint64

	// Correct counts committed branches whose direction was predicted
	// correctly; Mispredictions counts the rest.
	Correct        uint64
	Mispredictions uint64
	// AddrHits counts committed branches whose next fetch address was
	// predicted correctly (direction and target).
	AddrHits uint64

	// BTBHits and BTBMisses count BTB lookups made during prediction.
	BTBHits   uint64
	BTBMisses uint64

	// RASPushes and RASPops count return address stack operations.
	RASPushes uint64
	RASPops   uint64
	// UsedRAS counts returns predicted from the stack.
	UsedRAS uint64
	// RASHits counts stack-predicted returns with the right target;
	// RASMisses counts wrong stack targets and returns that found the
	// stack empty.
	RASHits   uint64
	RASMisses uint64

	// UsedBimodal and UsedTwoLevel count which sub-predictor the combining
	// scheme trusted for committed conditional branches.
	UsedBimodal  uint64
	UsedTwoLevel uint64

	// Indirect jump accounting, with and without the stack.
	IndirectSeen       uint64
	IndirectHits       uint64
	IndirectNonRASSeen uint64
	IndirectNonRASHits uint64
}

func percent(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// Accuracy returns the direction prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	return percent(s.Correct, s.Updates)
}

// MispredictionRate returns the direction misprediction rate as a
// percentage.
func (s Stats) MispredictionRate() float64 {
	return percent(s.Mispredictions, s.Updates)
}

// AddrAccuracy returns the next-address accuracy as a percentage.
func (s Stats) AddrAccuracy() float64 {
	return percent(s.AddrHits, s.Updates)
}

// BTBHitRate returns the BTB hit rate as a percentage.
func (s Stats) BTBHitRate() float64 {
	return percent(s.BTBHits, s.BTBHits+s.BTBMisses)
}

// RASHitRate returns the return address stack hit rate as a percentage.
func (s Stats) RASHitRate() float64 {
	return percent(s.RASHits, s.RASHits+s.RASMisses)
}

// IndirectAccuracy returns the indirect jump target accuracy as a
// percentage.
func (s Stats) IndirectAccuracy() float64 {
	return percent(s.IndirectHits, s.IndirectSeen)
}
