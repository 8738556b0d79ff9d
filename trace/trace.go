// Package trace reads and writes branch traces and replays them against a
// branch predictor.
//
// A trace is plain text with one executed control instruction per line:
//
//	# pc       word     dir target
//	1000       54000080 T   1010
//	1004       d65f03c0 T   2008
//
// Fields are hexadecimal (an optional 0x prefix is accepted). The direction
// is T (taken) or N (not taken). Blank lines and text after '#' are
// ignored.
package trace

import (
	"fmt"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/timing/bpred"
)

// Record is one executed control instruction.
type Record struct {
	PC     uint64
	Word   uint32
	Taken  bool
	Target uint64
}

// Outcome returns the resolved behavior of the record.
func (r Record) Outcome() bpred.Outcome {
	return bpred.Outcome{Taken: r.Taken, Target: r.Target}
}

// Info decodes the instruction word into what the predictor sees at fetch.
func (r Record) Info(d *insts.Decoder) bpred.BranchInfo {
	inst := d.Decode(r.Word)
	return bpred.BranchInfo{
		PC:          r.PC,
		TargetGuess: inst.Target(r.PC),
		Class:       inst.Class,
	}
}

func (r Record) String() string {
	dir := "N"
	if r.Taken {
		dir = "T"
	}
	return fmt.Sprintf("%x %08x %s %x", r.PC, r.Word, dir, r.Target)
}

// ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
