package bpred

import "fmt"

// Counter is a W-bit saturating counter. Values at or above half of the
// range predict taken.
type Counter struct {
	Value uint8
	Max   uint8
}

// NewCounter returns a counter of the given bit width holding value. The
// value is clamped into range.
func NewCounter(width uint, value uint8) Counter {
	c := Counter{Max: counterMax(width)}
	c.Value = min(value, c.Max)
	return c
}

func counterMax(width uint) uint8 {
	return uint8(uint16(1)<<width - 1)
}

// Increment steps the counter towards taken, clamping at Max.
func (c Counter) Increment() Counter {
	if c.Value < c.Max {
		c.Value++
	}
	return c
}

// Decrement steps the counter towards not-taken, clamping at 0.
func (c Counter) Decrement() Counter {
	if c.Value > 0 {
		c.Value--
	}
	return c
}

// Step moves the counter one step towards the outcome.
func (c Counter) Step(taken bool) Counter {
	if taken {
		return c.Increment()
	}
	return c.Decrement()
}

// PredictsTaken reports whether the counter is in the upper half.
func (c Counter) PredictsTaken() bool {
	return c.Value >= c.Max/2+1
}

// TableID identifies one counter table within a predictor.
type TableID uint8

// counterTable is a flat array of saturating counters sized to a power of
// two.
type counterTable struct {
	id    TableID
	name  string
	max   uint8
	cells []uint8
}

func newCounterTable(id TableID, name string, size uint32, width uint) *counterTable {
	t := &counterTable{
		id:    id,
		name:  name,
		max:   counterMax(width),
		cells: make([]uint8, size),
	}
	t.reset()
	return t
}

// reset fills the table alternating weakly-not-taken and weakly-taken,
// starting with weakly-not-taken at index 0.
func (t *counterTable) reset() {
	weakTaken := t.max/2 + 1
	weakNotTaken := weakTaken - 1
	for i := range t.cells {
		if i%2 == 0 {
			t.cells[i] = weakNotTaken
		} else {
			t.cells[i] = weakTaken
		}
	}
}

func (t *counterTable) size() uint32 {
	return uint32(len(t.cells))
}

func (t *counterTable) counter(i uint32) Counter {
	return Counter{Value: t.cells[i], Max: t.max}
}

func (t *counterTable) ref(i uint32) CounterRef {
	return CounterRef{Table: t.id, Index: i, valid: true}
}

// CounterRef is a handle to one counter cell: the owning table and the
// offset inside it. It stays valid for the life of the predictor.
type CounterRef struct {
	Table TableID
	Index uint32
	valid bool
}

// Valid reports whether the handle names a cell.
func (r CounterRef) Valid() bool {
	return r.valid
}

func (r CounterRef) String() string {
	if !r.valid {
		return "none"
	}
	return fmt.Sprintf("t%d[%d]", r.Table, r.Index)
}

// tableSet owns every counter table of one predictor and resolves handles.
type tableSet struct {
	tables []*counterTable
}

func (s *tableSet) add(name string, size uint32, width uint) *counterTable {
	t := newCounterTable(TableID(len(s.tables)), name, size, width)
	s.tables = append(s.tables, t)
	return t
}

func (s *tableSet) resolve(ref CounterRef) *counterTable {
	if !ref.valid || int(ref.Table) >= len(s.tables) {
		panic(&ProtocolViolation{Reason: "dangling counter handle " + ref.String()})
	}

	t := s.tables[ref.Table]
	if ref.Index >= t.size() {
		panic(&ProtocolViolation{Reason: "counter handle out of range " + ref.String()})
	}
	return t
}

// Counter returns the current value of the referenced cell.
func (s *tableSet) counter(ref CounterRef) Counter {
	return s.resolve(ref).counter(ref.Index)
}

// step applies one outcome to the referenced cell. Invalid handles are
// ignored; a record only carries the handles its scheme consulted.
func (s *tableSet) step(ref CounterRef, taken bool) {
	if !ref.valid {
		return
	}

	t := s.resolve(ref)
	t.cells[ref.Index] = t.counter(ref.Index).Step(taken).Value
}

func (s *tableSet) reset() {
	for _, t := range s.tables {
		t.reset()
	}
}
