package bpred

// maxHistoryWidth bounds every history register.
const maxHistoryWidth = 20

// shiftRegister is a fixed-width branch history register. The most recent
// outcome lives in bit 0.
type shiftRegister struct {
	value uint32
	width uint
}

func (r *shiftRegister) mask() uint32 {
	return uint32(1)<<r.width - 1
}

// shift pushes one conditional-branch outcome into the register.
func (r *shiftRegister) shift(taken bool) {
	var bit uint32
	if taken {
		bit = 1
	}
	r.value = ((r.value << 1) | bit) & r.mask()
}

// historyTable is the first level of a two-level predictor: one shift
// register per branch group, selected by low PC bits.
type historyTable struct {
	regs []shiftRegister
}

func newHistoryTable(size uint32, width uint) *historyTable {
	t := &historyTable{regs: make([]shiftRegister, size)}
	for i := range t.regs {
		t.regs[i].width = width
	}
	return t
}

func (t *historyTable) index(pcBits uint64) uint32 {
	return uint32(pcBits & uint64(len(t.regs)-1))
}

func (t *historyTable) reset() {
	for i := range t.regs {
		t.regs[i].value = 0
	}
}

// gshareIndex folds the PC into the global history and masks to the table.
func gshareIndex(pcBits uint64, history uint32, size uint32) uint32 {
	return uint32((pcBits ^ uint64(history)) & uint64(size-1))
}

// twoLevelIndex forms the second-level index from a history pattern. The PC
// bits sit above the history bits; with xor set, the history bits are also
// XOR-folded with the low PC bits.
func twoLevelIndex(pcBits uint64, history uint32, width uint, xor bool, size uint32) uint32 {
	h := uint64(history)
	if xor {
		h = (h ^ pcBits) & (uint64(1)<<width - 1)
	}
	return uint32((h | pcBits<<width) & uint64(size-1))
}
