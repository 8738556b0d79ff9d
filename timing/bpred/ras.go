package bpred

import "fmt"

// returnStack is a fixed-size circular return address stack. Pushing onto
// a full stack silently overwrites the oldest entry, as hardware does.
type returnStack struct {
	entries []uint64
	tos     int
	count   int
}

func newReturnStack(size uint32) *returnStack {
	s := &returnStack{entries: make([]uint64, size)}
	s.reset()
	return s
}

func (s *returnStack) capacity() int {
	return len(s.entries)
}

func (s *returnStack) push(addr uint64) {
	if len(s.entries) == 0 {
		return
	}

	s.tos = (s.tos + 1) % len(s.entries)
	s.entries[s.tos] = addr
	if s.count < len(s.entries) {
		s.count++
	}
}

// pop returns the top address, or false when the stack is empty.
func (s *returnStack) pop() (uint64, bool) {
	if s.count == 0 {
		return 0, false
	}

	addr := s.entries[s.tos]
	s.tos = (s.tos + len(s.entries) - 1) % len(s.entries)
	s.count--
	return addr, true
}

func (s *returnStack) reset() {
	clear(s.entries)
	s.tos = len(s.entries) - 1
	s.count = 0
}

func (s *returnStack) describe() string {
	return fmt.Sprintf("ret_stack: %d entries\n", len(s.entries))
}
