package bpred

import "github.com/sarchlab/bpsim/insts"

// UpdateRecord carries the state a prediction touched until its outcome is
// known. Predict issues it, Commit consumes it exactly once. Records must
// not be copied; the predictor tracks outstanding records by sequence
// number and rejects anything else.
type UpdateRecord struct {
	owner *Predictor
	seq   uint64

	pc    uint64
	class insts.Class

	dir        dirLookup
	usedRAS    bool
	rasEmpty   bool
	prediction Prediction
}

// Seq returns the sequence number the predictor assigned to the record.
func (r *UpdateRecord) Seq() uint64 {
	return r.seq
}

// PC returns the address of the predicted instruction.
func (r *UpdateRecord) PC() uint64 {
	return r.pc
}

// Prediction returns the prediction the record was issued with.
func (r *UpdateRecord) Prediction() Prediction {
	return r.prediction
}

// Primary returns the handle of the direction counter whose vote was used.
// It is invalid for unconditional branches and static schemes.
func (r *UpdateRecord) Primary() CounterRef {
	return r.dir.primary
}

// Secondary returns the handle of the non-selected sub-predictor counter
// of the combining scheme.
func (r *UpdateRecord) Secondary() CounterRef {
	return r.dir.secondary
}

// Meta returns the handle of the meta counter of the combining scheme.
func (r *UpdateRecord) Meta() CounterRef {
	return r.dir.meta
}

// UsedTwoLevel reports whether the combining scheme trusted its two-level
// component.
func (r *UpdateRecord) UsedTwoLevel() bool {
	return r.dir.usedTwoLevel
}

// UsedRAS reports whether the target came from the return address stack.
func (r *UpdateRecord) UsedRAS() bool {
	return r.usedRAS
}
