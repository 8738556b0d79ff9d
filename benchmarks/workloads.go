package benchmarks

import (
	"math/rand/v2"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/trace"
)

// Workload is a synthetic branch trace that stresses one predictor
// characteristic.
type Workload struct {
	// Name identifies the workload
	Name string

	// Description explains what the workload stresses
	Description string

	// Records is the executed branch sequence
	Records []trace.Record
}

// GetWorkloads returns the standard set of workloads for comparing schemes.
func GetWorkloads() []Workload {
	return []Workload{
		LoopNest(100, 8),
		Alternating(2000),
		Correlated(2000, 1),
		CallReturn(500),
		IndirectDispatch(1000, 4),
		DeepRecursion(100, 16),
	}
}

// GetCoreWorkloads returns a minimal set of workloads for quick validation.
func GetCoreWorkloads() []Workload {
	return []Workload{
		LoopNest(20, 8),
		Alternating(200),
		CallReturn(50),
	}
}

// tracer accumulates the records of a synthetic program.
type tracer struct {
	records []trace.Record
}

func (t *tracer) emit(pc uint64, word uint32, taken bool, target uint64) {
	t.records = append(t.records, trace.Record{
		PC:     pc,
		Word:   word,
		Taken:  taken,
		Target: target,
	})
}

func offset(pc, target uint64) int32 {
	return int32(int64(target) - int64(pc))
}

func (t *tracer) cond(pc, target uint64, taken bool) {
	t.emit(pc, EncodeBCond(offset(pc, target), uint8(insts.CondNE)), taken, target)
}

func (t *tracer) cbz(pc, target uint64, taken bool) {
	t.emit(pc, EncodeCBZ(0, offset(pc, target)), taken, target)
}

func (t *tracer) jump(pc, target uint64) {
	t.emit(pc, EncodeB(offset(pc, target)), true, target)
}

func (t *tracer) call(pc, target uint64) {
	t.emit(pc, EncodeBL(offset(pc, target)), true, target)
}

func (t *tracer) ret(pc, target uint64) {
	t.emit(pc, EncodeRET(), true, target)
}

func (t *tracer) indirect(pc, target uint64) {
	t.emit(pc, EncodeBR(16), true, target)
}

// LoopNest is a counted inner loop inside an outer loop:
//
//	for i := 0; i < outer; i++ {
//		for j := 0; j < inner; j++ { ... }
//	}
//
// The inner back edge is taken inner-1 times, then falls through.
func LoopNest(outer, inner int) Workload {
	var t tracer
	for i := 0; i < outer; i++ {
		for j := 0; j < inner; j++ {
			t.cond(0x1010, 0x1004, j < inner-1)
		}
		t.cond(0x1020, 0x1000, i < outer-1)
	}

	return Workload{
		Name:        "loop_nest",
		Description: "counted inner loop in an outer loop - exit mispredictions only",
		Records:     t.records,
	}
}

// Alternating is a single branch that flips direction every execution.
// Per-branch counters cannot learn it; any history register can.
func Alternating(n int) Workload {
	var t tracer
	for i := 0; i < n; i++ {
		t.cond(0x2000, 0x2040, i%2 == 0)
	}

	return Workload{
		Name:        "alternating",
		Description: "one branch flipping T/N - defeats bimodal, easy with history",
		Records:     t.records,
	}
}

// Correlated pairs a random branch with a second branch that repeats its
// outcome. The second branch is predictable only through global history.
func Correlated(n int, seed uint64) Workload {
	rng := rand.New(rand.NewPCG(seed, seed))

	var t tracer
	for i := 0; i < n; i++ {
		taken := rng.IntN(2) == 1
		t.cond(0x3000, 0x3008, taken)
		t.cond(0x3010, 0x3018, taken)
		t.jump(0x3020, 0x3000)
	}

	return Workload{
		Name:        "correlated",
		Description: "random branch followed by a branch repeating it - needs global history",
		Records:     t.records,
	}
}

// CallReturn is a two-deep call chain invoked from a loop:
// main -> f -> g, then both return.
func CallReturn(n int) Workload {
	const (
		main = uint64(0x4000)
		f    = uint64(0x5000)
		g    = uint64(0x6000)
	)

	var t tracer
	for i := 0; i < n; i++ {
		t.call(main, f)
		t.call(f+0x10, g)
		t.ret(g+0x10, f+0x14)
		t.ret(f+0x20, main+4)
		t.cond(main+8, main, i < n-1)
	}

	return Workload{
		Name:        "call_return",
		Description: "nested BL/RET pairs - return targets come from the stack",
		Records:     t.records,
	}
}

// IndirectDispatch is an interpreter loop: one BR through a table of
// handlers visited round robin, each handler jumping back.
func IndirectDispatch(n, handlers int) Workload {
	const dispatch = uint64(0x7000)

	var t tracer
	for i := 0; i < n; i++ {
		handler := 0x8000 + uint64(i%handlers)*0x100
		t.indirect(dispatch, handler)
		t.jump(handler+0x10, dispatch)
	}

	return Workload{
		Name:        "indirect_dispatch",
		Description: "register branch cycling through handlers - BTB keeps one target",
		Records:     t.records,
	}
}

// DeepRecursion calls a recursive function deeper than a small return
// stack, so the outermost returns find it empty or overwritten.
func DeepRecursion(n, depth int) Workload {
	const (
		main = uint64(0xA000)
		fn   = uint64(0x9000)
	)

	var t tracer
	for i := 0; i < n; i++ {
		t.call(main, fn)
		for d := 0; d < depth; d++ {
			t.cbz(fn, fn+0x10, false)
			t.call(fn+8, fn)
		}
		t.cbz(fn, fn+0x10, true)
		for d := 0; d < depth; d++ {
			t.ret(fn+0x10, fn+0xC)
		}
		t.ret(fn+0x10, main+4)
		t.jump(main+4, main)
	}

	return Workload{
		Name:        "deep_recursion",
		Description: "recursion deeper than the return stack - overflow wraps",
		Records:     t.records,
	}
}
