// Package insts classifies ARM64 control-flow instructions for the branch
// predictor.
//
// Only the branch subset of the ISA is decoded. Every other encoding comes
// back as OpUnknown with an empty Class, which the predictor treats as a
// non-control instruction. Supported encodings:
//   - Unconditional branch (immediate): B, BL
//   - Conditional branch (immediate): B.cond
//   - Compare and branch: CBZ, CBNZ
//   - Test and branch: TBZ, TBNZ
//   - Branch to register: BR, BLR, RET
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x94000040) // BL #0x100
//	fmt.Printf("call=%v target=0x%x\n", inst.Class.IsCall(), inst.Target(0x1000))
package insts

// Class is a set of opcode classification flags.
type Class uint8

// Classification flags.
const (
	// ClassCtrl marks any control-flow instruction.
	ClassCtrl Class = 1 << iota
	// ClassUncond marks an unconditional transfer.
	ClassUncond
	// ClassCond marks a conditional branch.
	ClassCond
	// ClassIndirect marks a register-target transfer.
	ClassIndirect
	// ClassCall marks a transfer that writes the link register.
	ClassCall
	// ClassReturn marks a function return.
	ClassReturn
)

// IsControl reports whether the instruction transfers control.
func (c Class) IsControl() bool {
	return c&ClassCtrl != 0
}

// IsConditional reports whether the instruction is a conditional branch.
// Only conditional branches consult and train the direction tables.
func (c Class) IsConditional() bool {
	return c&(ClassCtrl|ClassUncond) == ClassCtrl
}

// IsUnconditional reports whether the instruction always transfers control.
func (c Class) IsUnconditional() bool {
	return c&(ClassCtrl|ClassUncond) == ClassCtrl|ClassUncond
}

// IsIndirect reports whether the target comes from a register.
func (c Class) IsIndirect() bool {
	return c&ClassIndirect != 0
}

// IsCall reports whether the instruction is a call.
func (c Class) IsCall() bool {
	return c&ClassCall != 0
}

// IsReturn reports whether the instruction is a return.
func (c Class) IsReturn() bool {
	return c&ClassReturn != 0
}

// String renders the flags in a compact form, e.g. "ctrl|uncond|call".
func (c Class) String() string {
	if c == 0 {
		return "none"
	}

	names := []struct {
		flag Class
		name string
	}{
		{ClassCtrl, "ctrl"},
		{ClassUncond, "uncond"},
		{ClassCond, "cond"},
		{ClassIndirect, "indirect"},
		{ClassCall, "call"},
		{ClassReturn, "return"},
	}

	s := ""
	for _, n := range names {
		if c&n.flag == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
	}
	return s
}
