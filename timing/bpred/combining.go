package bpred

// combiningDirectory runs a bimodal and a two-level predictor side by side.
// A third, bimodal-indexed meta table picks whose vote counts: a meta
// counter predicting taken selects the two-level vote.
type combiningDirectory struct {
	tables   *tableSet
	bimod    *bimodalDirectory
	twoLevel *twoLevelDirectory
	meta     *bimodalDirectory
}

func newCombiningDirectory(
	tables *tableSet,
	c *Config,
	width, shift uint,
) (*combiningDirectory, error) {
	bimod, err := newBimodalDirectory(tables, "bimod_size", c.BimodSize, width, shift)
	if err != nil {
		return nil, err
	}

	twoLevel, err := newTwoLevelDirectory(tables,
		c.L1Size, c.L2Size, c.HistoryWidth, c.XOR, width, shift)
	if err != nil {
		return nil, err
	}

	meta, err := newBimodalDirectory(tables, "meta_size", c.MetaSize, width, shift)
	if err != nil {
		return nil, err
	}

	return &combiningDirectory{
		tables:   tables,
		bimod:    bimod,
		twoLevel: twoLevel,
		meta:     meta,
	}, nil
}

func (d *combiningDirectory) lookup(pc uint64) dirLookup {
	b := d.bimod.lookup(pc)
	t := d.twoLevel.lookup(pc)
	m := d.meta.lookup(pc)

	l := dirLookup{
		meta:          m.primary,
		bimodTaken:    b.taken,
		twoLevelTaken: t.taken,
	}

	if m.taken {
		l.usedTwoLevel = true
		l.primary = t.primary
		l.secondary = b.primary
		l.taken = t.taken
	} else {
		l.primary = b.primary
		l.secondary = t.primary
		l.taken = b.taken
	}

	return l
}

func (d *combiningDirectory) train(pc uint64, l dirLookup, taken bool) {
	d.twoLevel.shiftHistory(pc, taken)

	d.tables.step(l.primary, taken)
	d.tables.step(l.secondary, taken)

	// The meta counter only learns when the sub-predictors disagreed.
	if l.bimodTaken != l.twoLevelTaken {
		d.tables.step(l.meta, l.twoLevelTaken == taken)
	}
}

func (d *combiningDirectory) reset() {
	d.bimod.reset()
	d.twoLevel.reset()
	d.meta.reset()
}

func (d *combiningDirectory) describe(_ string) string {
	return d.bimod.describe("bimod") +
		d.twoLevel.describe("2lev") +
		d.meta.describe("meta")
}
