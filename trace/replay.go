package trace

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/timing/bpred"
)

// Options configures a replay.
type Options struct {
	// Window is the number of branches kept in flight. A branch commits
	// only when Window younger branches have been predicted, which models
	// the fetch-to-resolve distance of a pipeline. Values below 1 mean 1
	// (commit right after predict).
	Window int

	// Penalty is the number of fetch cycles lost on every wrong next-fetch
	// address. Zero uses the predictor's configured mispredict penalty.
	Penalty uint64

	// Progress, if set, is called every ProgressEvery records with the
	// number of records replayed so far.
	Progress      func(done uint64)
	ProgressEvery uint64
}

// Result summarizes a replay.
type Result struct {
	// Records is the number of trace records read.
	Records uint64 `json:"records"`
	// Branches is the number of control instructions predicted. Records
	// that decode to non-control instructions are skipped.
	Branches uint64 `json:"branches"`
	// Mispredicts counts wrong directions.
	Mispredicts uint64 `json:"mispredicts"`
	// AddrMisses counts wrong next-fetch addresses, including taken
	// predictions without a known target.
	AddrMisses uint64 `json:"addr_misses"`
	// PenaltyCycles is AddrMisses times the penalty.
	PenaltyCycles uint64 `json:"penalty_cycles"`

	Stats bpred.Stats `json:"-"`
}

type inflight struct {
	rec *bpred.UpdateRecord
	out bpred.Outcome
}

// Replay feeds every record of src through pred and returns the summary.
// Replay stops early when ctx is canceled.
func Replay(
	ctx context.Context,
	src Source,
	pred *bpred.Predictor,
	opts Options,
) (Result, error) {
	window := max(opts.Window, 1)
	penalty := opts.Penalty
	if penalty == 0 {
		penalty = pred.Config().MispredictPenalty
	}
	instSize := pred.Config().InstSize

	var (
		result  Result
		decoder = insts.NewDecoder()
		queue   = make([]inflight, 0, window)
	)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("replay stopped after %d records: %w", result.Records, err)
		}

		result.Records++
		if opts.Progress != nil && opts.ProgressEvery > 0 &&
			result.Records%opts.ProgressEvery == 0 {
			opts.Progress(result.Records)
		}

		prediction, update := pred.Predict(rec.Info(decoder))
		if update == nil {
			continue
		}

		result.Branches++
		if prediction.Taken != rec.Taken {
			result.Mispredicts++
		}
		if !nextFetchCorrect(rec, prediction, instSize) {
			result.AddrMisses++
			result.PenaltyCycles += penalty
		}

		queue = append(queue, inflight{rec: update, out: rec.Outcome()})
		if len(queue) >= window {
			pred.Commit(queue[0].rec, queue[0].out)
			queue = queue[1:]
		}
	}

	for _, f := range queue {
		pred.Commit(f.rec, f.out)
	}

	result.Stats = pred.Stats()
	return result, nil
}

func nextFetchCorrect(rec Record, p bpred.Prediction, instSize uint64) bool {
	actual := rec.PC + instSize
	if rec.Taken {
		actual = rec.Target
	}

	if !p.Taken {
		return actual == rec.PC+instSize
	}
	return p.TargetKnown && p.Target == actual
}
