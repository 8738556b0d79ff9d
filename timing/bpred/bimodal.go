package bpred

import "fmt"

// bimodalDirectory is a flat table of saturating counters indexed by PC.
type bimodalDirectory struct {
	tables *tableSet
	table  *counterTable
	shift  uint
}

func newBimodalDirectory(
	tables *tableSet,
	field string,
	size uint32,
	width, shift uint,
) (*bimodalDirectory, error) {
	if err := checkTableSize(field, size); err != nil {
		return nil, err
	}

	return &bimodalDirectory{
		tables: tables,
		table:  tables.add(field, size, width),
		shift:  shift,
	}, nil
}

func (d *bimodalDirectory) index(pc uint64) uint32 {
	return uint32((pc >> d.shift) & uint64(d.table.size()-1))
}

func (d *bimodalDirectory) lookup(pc uint64) dirLookup {
	i := d.index(pc)
	return dirLookup{
		primary: d.table.ref(i),
		taken:   d.table.counter(i).PredictsTaken(),
	}
}

func (d *bimodalDirectory) train(_ uint64, l dirLookup, taken bool) {
	d.tables.step(l.primary, taken)
}

func (d *bimodalDirectory) reset() {
	d.table.reset()
}

func (d *bimodalDirectory) describe(name string) string {
	return fmt.Sprintf("pred_dir: %s: %d-bit: %d entries, direct-mapped\n",
		name, counterBits(d.table.max), d.table.size())
}

func counterBits(m uint8) int {
	n := 0
	for v := uint16(m) + 1; v > 1; v >>= 1 {
		n++
	}
	return n
}
