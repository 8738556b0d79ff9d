package bpred

import "fmt"

// gshareDirectory shares one pattern table among all branches, indexed by
// the PC XOR-folded with a single global history register.
type gshareDirectory struct {
	tables  *tableSet
	table   *counterTable
	history shiftRegister
	shift   uint
}

func newGshareDirectory(
	tables *tableSet,
	size, historyWidth uint32,
	width, shift uint,
) (*gshareDirectory, error) {
	if err := checkTableSize("bimod_size", size); err != nil {
		return nil, err
	}
	if err := checkHistoryWidth(historyWidth); err != nil {
		return nil, err
	}

	return &gshareDirectory{
		tables:  tables,
		table:   tables.add("gshare", size, width),
		history: shiftRegister{width: uint(historyWidth)},
		shift:   shift,
	}, nil
}

func (d *gshareDirectory) index(pc uint64) uint32 {
	return gshareIndex(pc>>d.shift, d.history.value, d.table.size())
}

func (d *gshareDirectory) lookup(pc uint64) dirLookup {
	i := d.index(pc)
	return dirLookup{
		primary: d.table.ref(i),
		taken:   d.table.counter(i).PredictsTaken(),
	}
}

func (d *gshareDirectory) train(_ uint64, l dirLookup, taken bool) {
	d.history.shift(taken)
	d.tables.step(l.primary, taken)
}

func (d *gshareDirectory) reset() {
	d.table.reset()
	d.history.value = 0
}

func (d *gshareDirectory) describe(name string) string {
	return fmt.Sprintf("pred_dir: %s: gshare: %d entries, %d-bit global history\n",
		name, d.table.size(), d.history.width)
}
