package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Unconditional Branch (Immediate)", func() {
		// B #0x100           -> 0x14000040
		// Encoding: 000101, imm26=0x40 (64 instructions = 256 bytes)
		It("should decode B #0x100", func() {
			inst := decoder.Decode(0x14000040)

			Expect(inst.Op).To(Equal(insts.OpB))
			Expect(inst.Format).To(Equal(insts.FormatBranch))
			Expect(inst.BranchOffset).To(Equal(int64(0x100)))
			Expect(inst.Class).To(Equal(insts.ClassCtrl | insts.ClassUncond))
			Expect(inst.Target(0x1000)).To(Equal(uint64(0x1100)))
		})

		// B #-0x8            -> 0x17FFFFFE
		It("should decode B #-0x8 (backward branch)", func() {
			inst := decoder.Decode(0x17FFFFFE)

			Expect(inst.Op).To(Equal(insts.OpB))
			Expect(inst.BranchOffset).To(Equal(int64(-8)))
			Expect(inst.Target(0x1000)).To(Equal(uint64(0xFF8)))
		})

		// BL #0x200          -> 0x94000080
		It("should decode BL #0x200 as a call", func() {
			inst := decoder.Decode(0x94000080)

			Expect(inst.Op).To(Equal(insts.OpBL))
			Expect(inst.Class.IsCall()).To(BeTrue())
			Expect(inst.Class.IsUnconditional()).To(BeTrue())
			Expect(inst.Target(0x2000)).To(Equal(uint64(0x2200)))
		})
	})

	Describe("Conditional Branch", func() {
		// B.EQ #0x10         -> 0x54000080
		It("should decode B.EQ #0x10", func() {
			inst := decoder.Decode(0x54000080)

			Expect(inst.Op).To(Equal(insts.OpBCond))
			Expect(inst.Format).To(Equal(insts.FormatBranchCond))
			Expect(inst.Cond).To(Equal(insts.CondEQ))
			Expect(inst.BranchOffset).To(Equal(int64(0x10)))
			Expect(inst.Class.IsConditional()).To(BeTrue())
		})

		// B.NE #-4           -> 0x54FFFFE1
		It("should decode B.NE with a negative offset", func() {
			inst := decoder.Decode(0x54FFFFE1)

			Expect(inst.Op).To(Equal(insts.OpBCond))
			Expect(inst.Cond).To(Equal(insts.CondNE))
			Expect(inst.BranchOffset).To(Equal(int64(-4)))
		})

		// B.AL #4            -> 0x5400002E
		It("should classify B.AL as unconditional", func() {
			inst := decoder.Decode(0x5400002E)

			Expect(inst.Op).To(Equal(insts.OpBCond))
			Expect(inst.Class.IsUnconditional()).To(BeTrue())
			Expect(inst.Class.IsConditional()).To(BeFalse())
		})

		It("should reject B.cond encoding with bit 4 set", func() {
			inst := decoder.Decode(0x54000050)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Class.IsControl()).To(BeFalse())
		})
	})

	Describe("Compare and Test Branches", func() {
		// CBZ X0, #16        -> 0xB4000080
		It("should decode CBZ X0", func() {
			inst := decoder.Decode(0xB4000080)

			Expect(inst.Op).To(Equal(insts.OpCBZ))
			Expect(inst.Format).To(Equal(insts.FormatCompareBranch))
			Expect(inst.Is64Bit).To(BeTrue())
			Expect(inst.Rt).To(Equal(uint8(0)))
			Expect(inst.BranchOffset).To(Equal(int64(16)))
			Expect(inst.Class.IsConditional()).To(BeTrue())
		})

		// CBNZ W1, #8        -> 0x35000041
		It("should decode CBNZ W1", func() {
			inst := decoder.Decode(0x35000041)

			Expect(inst.Op).To(Equal(insts.OpCBNZ))
			Expect(inst.Is64Bit).To(BeFalse())
			Expect(inst.Rt).To(Equal(uint8(1)))
			Expect(inst.BranchOffset).To(Equal(int64(8)))
		})

		// TBZ W2, #5, #12    -> 0x36280062
		It("should decode TBZ W2, #5", func() {
			inst := decoder.Decode(0x36280062)

			Expect(inst.Op).To(Equal(insts.OpTBZ))
			Expect(inst.Format).To(Equal(insts.FormatTestBranch))
			Expect(inst.Bit).To(Equal(uint8(5)))
			Expect(inst.Rt).To(Equal(uint8(2)))
			Expect(inst.BranchOffset).To(Equal(int64(12)))
		})
	})

	Describe("Branch to Register", func() {
		// BR X16             -> 0xD61F0200
		It("should decode BR X16 as indirect jump", func() {
			inst := decoder.Decode(0xD61F0200)

			Expect(inst.Op).To(Equal(insts.OpBR))
			Expect(inst.Format).To(Equal(insts.FormatBranchReg))
			Expect(inst.Rn).To(Equal(uint8(16)))
			Expect(inst.Class.IsIndirect()).To(BeTrue())
			Expect(inst.Class.IsCall()).To(BeFalse())
			Expect(inst.Target(0x1000)).To(Equal(uint64(0)))
		})

		// BLR X10            -> 0xD63F0140
		It("should decode BLR X10 as indirect call", func() {
			inst := decoder.Decode(0xD63F0140)

			Expect(inst.Op).To(Equal(insts.OpBLR))
			Expect(inst.Rn).To(Equal(uint8(10)))
			Expect(inst.Class.IsCall()).To(BeTrue())
			Expect(inst.Class.IsIndirect()).To(BeTrue())
		})

		// RET (X30)          -> 0xD65F03C0
		It("should decode RET", func() {
			inst := decoder.Decode(0xD65F03C0)

			Expect(inst.Op).To(Equal(insts.OpRET))
			Expect(inst.Rn).To(Equal(uint8(30)))
			Expect(inst.Class.IsReturn()).To(BeTrue())
			Expect(inst.Class.IsUnconditional()).To(BeTrue())
		})
	})

	Describe("Non-branch Instructions", func() {
		It("should leave data processing instructions unclassified", func() {
			// ADD X0, X1, #42
			inst := decoder.Decode(0x9100A820)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Class).To(Equal(insts.Class(0)))
		})

		It("should leave NOP unclassified", func() {
			inst := decoder.Decode(0xD503201F)

			Expect(inst.Class.IsControl()).To(BeFalse())
		})
	})
})
