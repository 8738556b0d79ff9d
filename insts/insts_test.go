package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/insts"
)

var _ = Describe("Class", func() {
	It("should treat the zero class as non-control", func() {
		var c insts.Class
		Expect(c.IsControl()).To(BeFalse())
		Expect(c.IsConditional()).To(BeFalse())
		Expect(c.IsUnconditional()).To(BeFalse())
		Expect(c.String()).To(Equal("none"))
	})

	It("should not report a conditional branch as unconditional", func() {
		c := insts.ClassCtrl | insts.ClassCond
		Expect(c.IsConditional()).To(BeTrue())
		Expect(c.IsUnconditional()).To(BeFalse())
	})

	It("should render flags in a fixed order", func() {
		c := insts.ClassReturn | insts.ClassCtrl | insts.ClassIndirect | insts.ClassUncond
		Expect(c.String()).To(Equal("ctrl|uncond|indirect|return"))
	})
})
