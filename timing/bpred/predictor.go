// Package bpred implements the branch prediction subsystem of the timing
// model: static, bimodal, two-level adaptive, combining and gshare
// direction predictors, a set-associative Branch Target Buffer and a
// return address stack.
//
// The simulator calls Predict once per fetched control instruction and
// keeps the returned UpdateRecord until the branch resolves, then passes it
// to Commit together with the actual outcome:
//
//	pred, rec := bp.Predict(bpred.BranchInfo{PC: pc, Class: inst.Class})
//	// ... many cycles later ...
//	bp.Commit(rec, bpred.Outcome{Taken: taken, Target: target})
//
// A Predictor is not safe for concurrent use.
package bpred

import (
	"strings"

	"github.com/sarchlab/bpsim/insts"
)

// BranchInfo describes a fetched control instruction.
type BranchInfo struct {
	// PC is the address of the instruction.
	PC uint64
	// TargetGuess is the decoder-computed target of a direct branch. Only
	// the static schemes use it.
	TargetGuess uint64
	// Class carries the opcode flags, including call and return.
	Class insts.Class
}

// Prediction represents a branch prediction result.
type Prediction struct {
	// Taken indicates whether the branch is predicted to be taken.
	Taken bool
	// Target is the predicted target address (if known).
	Target uint64
	// TargetKnown indicates whether the target address is known. A taken
	// prediction without a known target means the fetch stage must wait.
	TargetKnown bool
	// UsedRAS indicates the target came from the return address stack.
	UsedRAS bool
}

// Outcome is the resolved behavior of a branch.
type Outcome struct {
	Taken  bool
	Target uint64
}

// Predictor composes a direction predictor, a BTB and a return address
// stack behind the Predict/Commit protocol.
type Predictor struct {
	config Config

	tables *tableSet
	dir    directory
	btb    *btb
	ras    *returnStack

	nextSeq uint64
	pending map[uint64]struct{}

	stats Stats
}

// New creates a predictor. On an invalid configuration it returns a
// *ConfigError and no predictor.
func New(config *Config) (*Predictor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Predictor{
		config:  *config,
		tables:  &tableSet{},
		nextSeq: 1,
		pending: make(map[uint64]struct{}),
	}

	dir, err := newDirectory(&p.config, p.tables)
	if err != nil {
		return nil, err
	}
	p.dir = dir

	if !config.Scheme.IsStatic() {
		p.btb = newBTB(config.BTBSets, config.BTBAssoc, uint(config.AddrShift), config.BTBReplacement)
		p.ras = newReturnStack(config.RASSize)
	}

	return p, nil
}

// Config returns a copy of the predictor configuration.
func (p *Predictor) Config() Config {
	return p.config
}

// Scheme returns the direction predictor scheme.
func (p *Predictor) Scheme() Scheme {
	return p.config.Scheme
}

// Stats returns the branch predictor statistics.
func (p *Predictor) Stats() Stats {
	return p.stats
}

// Pending returns the number of issued records not yet committed.
func (p *Predictor) Pending() int {
	return len(p.pending)
}

// Counter returns the current value of a counter named by a record handle.
func (p *Predictor) Counter(ref CounterRef) Counter {
	return p.tables.counter(ref)
}

// Predict makes a prediction for one control instruction and returns the
// record to pass to Commit. Non-control instructions get a zero prediction
// and a nil record.
func (p *Predictor) Predict(b BranchInfo) (Prediction, *UpdateRecord) {
	if !b.Class.IsControl() {
		return Prediction{}, nil
	}

	p.stats.Predictions++
	rec := p.issue(b)

	if p.config.Scheme.IsStatic() {
		rec.prediction = p.predictStatic(b)
		return rec.prediction, rec
	}

	predTaken := true
	if b.Class.IsConditional() {
		rec.dir = p.dir.lookup(b.PC)
		predTaken = rec.dir.taken
	}

	if b.Class.IsReturn() && p.ras.capacity() > 0 {
		if addr, ok := p.ras.pop(); ok {
			p.stats.RASPops++
			rec.usedRAS = true
			rec.prediction = Prediction{
				Taken:       true,
				Target:      addr,
				TargetKnown: true,
				UsedRAS:     true,
			}
			return rec.prediction, rec
		}
		rec.rasEmpty = true
	}

	if b.Class.IsCall() && p.config.RASPush == PushAtPredict {
		p.pushReturn(b.PC)
	}

	target, hit := p.btb.lookup(b.PC)
	if hit {
		p.stats.BTBHits++
	} else {
		p.stats.BTBMisses++
	}

	pred := Prediction{Taken: predTaken}
	if predTaken && hit {
		pred.Target = target
		pred.TargetKnown = true
	}

	rec.prediction = pred
	return pred, rec
}

func (p *Predictor) predictStatic(b BranchInfo) Prediction {
	if p.config.Scheme == SchemeNotTaken && b.Class.IsConditional() {
		return Prediction{}
	}

	pred := Prediction{Taken: true}
	if !b.Class.IsIndirect() {
		pred.Target = b.TargetGuess
		pred.TargetKnown = true
	}
	return pred
}

func (p *Predictor) pushReturn(pc uint64) {
	if p.ras.capacity() == 0 {
		return
	}
	p.ras.push(pc + p.config.InstSize)
	p.stats.RASPushes++
}

func (p *Predictor) issue(b BranchInfo) *UpdateRecord {
	rec := &UpdateRecord{
		owner: p,
		seq:   p.nextSeq,
		pc:    b.PC,
		class: b.Class,
	}
	p.nextSeq++
	p.pending[rec.seq] = struct{}{}
	return rec
}

// retire checks that rec is an outstanding record of this predictor and
// marks it committed.
func (p *Predictor) retire(rec *UpdateRecord) {
	if rec == nil {
		panic(&ProtocolViolation{Reason: "commit without an update record"})
	}
	if rec.owner != p {
		panic(&ProtocolViolation{Seq: rec.seq, Reason: "record belongs to another predictor"})
	}
	if _, ok := p.pending[rec.seq]; !ok {
		panic(&ProtocolViolation{Seq: rec.seq, Reason: "record already committed or not outstanding"})
	}
	delete(p.pending, rec.seq)
}

// Commit applies the actual outcome of a predicted branch. It panics with a
// *ProtocolViolation if rec is not an outstanding record of p.
func (p *Predictor) Commit(rec *UpdateRecord, out Outcome) {
	p.retire(rec)
	p.updateStats(rec, out)

	if p.config.Scheme.IsStatic() {
		return
	}

	if rec.class.IsConditional() {
		p.dir.train(rec.pc, rec.dir, out.Taken)
	}

	p.btb.update(rec.pc, out.Target, out.Taken)

	if rec.class.IsCall() && p.config.RASPush == PushAtCommit {
		p.pushReturn(rec.pc)
	}
}

// nextFetch returns the fetch address a prediction implies. A taken
// prediction without a target implies none.
func (p *Predictor) nextFetch(pc uint64, pred Prediction) (uint64, bool) {
	if !pred.Taken {
		return pc + p.config.InstSize, true
	}
	return pred.Target, pred.TargetKnown
}

func (p *Predictor) updateStats(rec *UpdateRecord, out Outcome) {
	pred := rec.prediction

	actual := rec.pc + p.config.InstSize
	if out.Taken {
		actual = out.Target
	}
	predicted, ok := p.nextFetch(rec.pc, pred)
	correct := ok && predicted == actual

	p.stats.Updates++
	if correct {
		p.stats.AddrHits++
	}
	if pred.Taken == out.Taken {
		p.stats.Correct++
	} else {
		p.stats.Mispredictions++
	}

	switch {
	case rec.usedRAS:
		p.stats.UsedRAS++
		if correct {
			p.stats.RASHits++
		} else {
			p.stats.RASMisses++
		}
	case rec.rasEmpty:
		p.stats.RASMisses++
	case rec.class.IsConditional() && p.config.Scheme == SchemeCombining:
		if rec.dir.usedTwoLevel {
			p.stats.UsedTwoLevel++
		} else {
			p.stats.UsedBimodal++
		}
	}

	if rec.class.IsIndirect() {
		p.stats.IndirectSeen++
		if correct {
			p.stats.IndirectHits++
		}
		if !rec.usedRAS {
			p.stats.IndirectNonRASSeen++
			if correct {
				p.stats.IndirectNonRASHits++
			}
		}
	}
}

// Reset clears all predictor state and statistics. Records issued before
// the reset can no longer be committed.
func (p *Predictor) Reset() {
	p.tables.reset()
	p.dir.reset()
	if p.btb != nil {
		p.btb.reset()
	}
	if p.ras != nil {
		p.ras.reset()
	}
	clear(p.pending)
	p.stats = Stats{}
}

// Describe renders the active configuration, one line per structure.
func (p *Predictor) Describe() string {
	var sb strings.Builder

	sb.WriteString(p.dir.describe(p.config.Scheme.String()))
	if p.btb != nil {
		sb.WriteString(p.btb.describe())
	}
	if p.ras != nil {
		sb.WriteString(p.ras.describe())
	}

	return sb.String()
}
