package benchmarks

// Instruction encoding helpers for the branches a workload emits. Offsets
// are in bytes relative to the branch and must be multiples of 4.

// EncodeB encodes unconditional branch: B offset
func EncodeB(offset int32) uint32 {
	var inst uint32 = 0
	inst |= 0b000101 << 26 // B opcode
	imm26 := uint32(offset/4) & 0x3FFFFFF
	inst |= imm26
	return inst
}

// EncodeBL encodes branch with link: BL offset
func EncodeBL(offset int32) uint32 {
	var inst uint32 = 0
	inst |= 0b100101 << 26
	imm26 := uint32(offset/4) & 0x3FFFFFF
	inst |= imm26
	return inst
}

// EncodeBCond encodes conditional branch: B.cond offset
func EncodeBCond(offset int32, cond uint8) uint32 {
	var inst uint32 = 0
	inst |= 0b0101010 << 25
	imm19 := uint32(offset/4) & 0x7FFFF
	inst |= imm19 << 5
	inst |= uint32(cond & 0xF)
	return inst
}

// EncodeCBZ encodes compare and branch on zero: CBZ Xt, offset
func EncodeCBZ(rt uint8, offset int32) uint32 {
	var inst uint32 = 0
	inst |= 1 << 31        // sf = 1 (64-bit)
	inst |= 0b011010 << 25 // compare and branch
	inst |= 0 << 24        // op = 0 (CBZ)
	imm19 := uint32(offset/4) & 0x7FFFF
	inst |= imm19 << 5
	inst |= uint32(rt & 0x1F)
	return inst
}

// EncodeBR encodes branch to register: BR Xn
func EncodeBR(rn uint8) uint32 {
	var inst uint32 = 0
	inst |= 0b1101011 << 25
	inst |= 0b00 << 21 // opc = BR
	inst |= 0b11111 << 16
	inst |= uint32(rn&0x1F) << 5
	return inst
}

// EncodeRET encodes return: RET (X30)
func EncodeRET() uint32 {
	var inst uint32 = 0
	inst |= 0b1101011 << 25
	inst |= 0b10 << 21
	inst |= 0b11111 << 16
	inst |= uint32(30) << 5 // X30 (LR)
	return inst
}
