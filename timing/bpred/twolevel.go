package bpred

import "fmt"

// twoLevelDirectory is a two-level adaptive predictor. The first level
// holds one history shift register per branch group; the second level is a
// counter table indexed by the selected history pattern and the PC. An l1
// size of one gives a global-history (GAg/GAp) organization, larger sizes a
// per-address one (PAg/PAp).
type twoLevelDirectory struct {
	tables *tableSet
	l1     *historyTable
	l2     *counterTable
	width  uint
	xor    bool
	shift  uint
}

func newTwoLevelDirectory(
	tables *tableSet,
	l1Size, l2Size, historyWidth uint32,
	xor bool,
	width, shift uint,
) (*twoLevelDirectory, error) {
	if err := checkTableSize("l1_size", l1Size); err != nil {
		return nil, err
	}
	if err := checkTableSize("l2_size", l2Size); err != nil {
		return nil, err
	}
	if err := checkHistoryWidth(historyWidth); err != nil {
		return nil, err
	}

	return &twoLevelDirectory{
		tables: tables,
		l1:     newHistoryTable(l1Size, uint(historyWidth)),
		l2:     tables.add("l2_size", l2Size, width),
		width:  uint(historyWidth),
		xor:    xor,
		shift:  shift,
	}, nil
}

func (d *twoLevelDirectory) index(pc uint64) uint32 {
	pcBits := pc >> d.shift
	history := d.l1.regs[d.l1.index(pcBits)].value
	return twoLevelIndex(pcBits, history, d.width, d.xor, d.l2.size())
}

func (d *twoLevelDirectory) lookup(pc uint64) dirLookup {
	i := d.index(pc)
	return dirLookup{
		primary: d.l2.ref(i),
		taken:   d.l2.counter(i).PredictsTaken(),
	}
}

func (d *twoLevelDirectory) train(pc uint64, l dirLookup, taken bool) {
	d.shiftHistory(pc, taken)
	d.tables.step(l.primary, taken)
}

// shiftHistory records an outcome in the shift register selected by pc.
func (d *twoLevelDirectory) shiftHistory(pc uint64, taken bool) {
	d.l1.regs[d.l1.index(pc>>d.shift)].shift(taken)
}

func (d *twoLevelDirectory) reset() {
	d.l1.reset()
	d.l2.reset()
}

func (d *twoLevelDirectory) describe(name string) string {
	xor := "no"
	if d.xor {
		xor = "with"
	}
	return fmt.Sprintf(
		"pred_dir: %s: 2-lvl: %d l1-entr, %d bits/ent, %s xor, %d l2-entr, direct-mapped\n",
		name, len(d.l1.regs), d.width, xor, d.l2.size())
}
