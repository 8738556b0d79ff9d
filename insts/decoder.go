// Package insts classifies ARM64 control-flow instructions for the branch
// predictor.
package insts

// Op represents an ARM64 branch opcode.
type Op uint16

// ARM64 branch opcodes.
const (
	OpUnknown Op = iota
	OpB
	OpBL
	OpBCond
	OpCBZ
	OpCBNZ
	OpTBZ
	OpTBNZ
	OpBR
	OpBLR
	OpRET
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown     Format = iota
	FormatBranch             // Unconditional Branch (Immediate)
	FormatBranchCond         // Conditional Branch
	FormatCompareBranch      // Compare and Branch
	FormatTestBranch         // Test and Branch
	FormatBranchReg          // Branch to Register
)

// Cond represents an ARM64 condition code.
type Cond uint8

// ARM64 condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always (unconditional)
	CondNV Cond = 0b1111 // Always (unconditional, reserved)
)

// Instruction represents a decoded ARM64 branch instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format
	Class  Class  // Predictor classification flags

	Is64Bit bool  // sf bit for CBZ/CBNZ, b5 for TBZ/TBNZ
	Rn      uint8 // Target register for BR/BLR/RET
	Rt      uint8 // Tested register for CBZ/CBNZ/TBZ/TBNZ
	Bit     uint8 // Tested bit number for TBZ/TBNZ

	BranchOffset int64 // Signed branch offset in bytes
	Cond         Cond  // Condition code for B.cond
}

// Target returns the direct branch target for an instruction at pc. For
// register branches and non-branches it returns 0.
func (i *Instruction) Target(pc uint64) uint64 {
	if i.Class&ClassCtrl == 0 || i.Class&ClassIndirect != 0 {
		return 0
	}
	return uint64(int64(pc) + i.BranchOffset)
}

// Decoder decodes ARM64 machine code into branch instructions.
type Decoder struct{}

// NewDecoder creates a new ARM64 branch decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit ARM64 instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown}

	switch {
	case d.isBranchImm(word):
		d.decodeBranchImm(word, inst)
	case d.isBranchCond(word):
		d.decodeBranchCond(word, inst)
	case d.isCompareBranch(word):
		d.decodeCompareBranch(word, inst)
	case d.isTestBranch(word):
		d.decodeTestBranch(word, inst)
	case d.isBranchReg(word):
		d.decodeBranchReg(word, inst)
	}

	return inst
}

// signExtend sign-extends the low n bits of v and scales by 4 bytes.
func signExtend(v uint32, n uint) int64 {
	offset := int64(v)
	if (v>>(n-1))&1 == 1 {
		offset |= ^int64((1 << n) - 1)
	}
	return offset * 4
}

// isBranchImm checks for unconditional branch immediate.
// B:  bits [31:26] == 0b000101
// BL: bits [31:26] == 0b100101
func (d *Decoder) isBranchImm(word uint32) bool {
	op := (word >> 26) & 0x3F
	return op == 0b000101 || op == 0b100101
}

// decodeBranchImm decodes B and BL instructions.
// Format: op | 00101 | imm26
func (d *Decoder) decodeBranchImm(word uint32, inst *Instruction) {
	inst.Format = FormatBranch
	inst.BranchOffset = signExtend(word&0x3FFFFFF, 26)

	if (word>>31)&0x1 == 0 {
		inst.Op = OpB
		inst.Class = ClassCtrl | ClassUncond
	} else {
		inst.Op = OpBL
		inst.Class = ClassCtrl | ClassUncond | ClassCall
	}
}

// isBranchCond checks for conditional branch.
// B.cond: bits [31:25] == 0b0101010, bit 4 == 0
func (d *Decoder) isBranchCond(word uint32) bool {
	op := (word >> 25) & 0x7F
	bit4 := (word >> 4) & 0x1
	return op == 0b0101010 && bit4 == 0
}

// decodeBranchCond decodes conditional branch instructions.
// Format: 0101010 0 | imm19 | 0 | cond
func (d *Decoder) decodeBranchCond(word uint32, inst *Instruction) {
	inst.Format = FormatBranchCond
	inst.Op = OpBCond
	inst.BranchOffset = signExtend((word>>5)&0x7FFFF, 19)
	inst.Cond = Cond(word & 0xF)

	// B.AL and B.NV are encoded as conditional branches but always jump.
	if inst.Cond == CondAL || inst.Cond == CondNV {
		inst.Class = ClassCtrl | ClassUncond
	} else {
		inst.Class = ClassCtrl | ClassCond
	}
}

// isCompareBranch checks for CBZ/CBNZ.
// Format: sf | 011010 | op | imm19 | Rt
func (d *Decoder) isCompareBranch(word uint32) bool {
	return (word>>25)&0x3F == 0b011010
}

func (d *Decoder) decodeCompareBranch(word uint32, inst *Instruction) {
	inst.Format = FormatCompareBranch
	inst.Class = ClassCtrl | ClassCond
	inst.Is64Bit = (word>>31)&0x1 == 1
	inst.Rt = uint8(word & 0x1F)
	inst.BranchOffset = signExtend((word>>5)&0x7FFFF, 19)

	if (word>>24)&0x1 == 0 {
		inst.Op = OpCBZ
	} else {
		inst.Op = OpCBNZ
	}
}

// isTestBranch checks for TBZ/TBNZ.
// Format: b5 | 011011 | op | b40 | imm14 | Rt
func (d *Decoder) isTestBranch(word uint32) bool {
	return (word>>25)&0x3F == 0b011011
}

func (d *Decoder) decodeTestBranch(word uint32, inst *Instruction) {
	inst.Format = FormatTestBranch
	inst.Class = ClassCtrl | ClassCond

	b5 := (word >> 31) & 0x1
	b40 := (word >> 19) & 0x1F
	inst.Is64Bit = b5 == 1
	inst.Bit = uint8(b5<<5 | b40)
	inst.Rt = uint8(word & 0x1F)
	inst.BranchOffset = signExtend((word>>5)&0x3FFF, 14)

	if (word>>24)&0x1 == 0 {
		inst.Op = OpTBZ
	} else {
		inst.Op = OpTBNZ
	}
}

// isBranchReg checks for branch to register.
// Format: 1101011 0 0 op[1:0] 11111 0000 0 0 Rn 00000
func (d *Decoder) isBranchReg(word uint32) bool {
	hi := (word >> 25) & 0x7F
	mid := (word >> 10) & 0x3F
	lo := word & 0x1F

	return hi == 0b1101011 && mid == 0b000000 && lo == 0b00000
}

// decodeBranchReg decodes BR, BLR, and RET instructions.
func (d *Decoder) decodeBranchReg(word uint32, inst *Instruction) {
	op := (word >> 21) & 0x3 // bits [22:21]
	inst.Rn = uint8((word >> 5) & 0x1F)

	switch op {
	case 0b00:
		inst.Op = OpBR
		inst.Class = ClassCtrl | ClassUncond | ClassIndirect
	case 0b01:
		inst.Op = OpBLR
		inst.Class = ClassCtrl | ClassUncond | ClassIndirect | ClassCall
	case 0b10:
		inst.Op = OpRET
		inst.Class = ClassCtrl | ClassUncond | ClassIndirect | ClassReturn
	default:
		return
	}
	inst.Format = FormatBranchReg
}
