package bpred

import "fmt"

// staticDirectory always predicts the same direction and holds no state.
type staticDirectory struct {
	taken bool
}

func (d *staticDirectory) lookup(uint64) dirLookup {
	return dirLookup{taken: d.taken}
}

func (d *staticDirectory) train(uint64, dirLookup, bool) {}

func (d *staticDirectory) reset() {}

func (d *staticDirectory) describe(name string) string {
	if d.taken {
		return fmt.Sprintf("pred_dir: %s: predict taken\n", name)
	}
	return fmt.Sprintf("pred_dir: %s: predict not taken\n", name)
}
