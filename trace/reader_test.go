package trace_test

import (
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/insts"
	"github.com/sarchlab/bpsim/trace"
)

var _ = Describe("Reader", func() {
	It("should parse records and skip comments", func() {
		input := `# pc word dir target

1000 54000080 T 1010   # B.EQ +16
0x1004 0xd65f03c0 n 0x2008
`
		r := trace.NewReader(strings.NewReader(input))

		rec, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(Equal(trace.Record{PC: 0x1000, Word: 0x54000080, Taken: true, Target: 0x1010}))

		rec, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(rec).To(Equal(trace.Record{PC: 0x1004, Word: 0xD65F03C0, Taken: false, Target: 0x2008}))

		_, err = r.Next()
		Expect(err).To(Equal(io.EOF))
	})

	DescribeTable("should reject malformed lines",
		func(line string) {
			r := trace.NewReader(strings.NewReader("1000 54000080 T 1010\n" + line + "\n"))

			_, err := r.Next()
			Expect(err).NotTo(HaveOccurred())

			_, err = r.Next()
			var parseErr *trace.ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Line).To(Equal(2))
			Expect(parseErr.Text).To(Equal(line))
		},
		Entry("too few fields", "1000 54000080 T"),
		Entry("too many fields", "1000 54000080 T 1010 extra"),
		Entry("bad direction", "1000 54000080 X 1010"),
		Entry("bad pc", "zz 54000080 T 1010"),
		Entry("word wider than 32 bits", "1000 154000080 T 1010"),
		Entry("bad target", "1000 54000080 T 0xg"),
	)

	It("should decode what the predictor sees at fetch", func() {
		rec := trace.Record{PC: 0x1000, Word: 0x54000080, Taken: true, Target: 0x1010}

		info := rec.Info(insts.NewDecoder())
		Expect(info.PC).To(Equal(uint64(0x1000)))
		Expect(info.TargetGuess).To(Equal(uint64(0x1010)))
		Expect(info.Class.IsConditional()).To(BeTrue())
	})

	It("should not guess targets of register branches", func() {
		rec := trace.Record{PC: 0x2000, Word: 0xD65F03C0, Taken: true, Target: 0x1004}

		info := rec.Info(insts.NewDecoder())
		Expect(info.TargetGuess).To(BeZero())
		Expect(info.Class.IsReturn()).To(BeTrue())
	})

	It("should read an empty trace", func() {
		records, err := trace.ReadAll(strings.NewReader("# nothing here\n\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})
})

var _ = Describe("Writer", func() {
	It("should write records the reader accepts", func() {
		records := []trace.Record{
			{PC: 0x1000, Word: 0x54000080, Taken: true, Target: 0x1010},
			{PC: 0x1010, Word: 0x94000080, Taken: true, Target: 0x1210},
			{PC: 0x1214, Word: 0xD65F03C0, Taken: true, Target: 0x1014},
			{PC: 0x1014, Word: 0x54FFFFE1, Taken: false, Target: 0x1010},
		}

		var buf bytes.Buffer
		w := trace.NewWriter(&buf)
		Expect(w.Comment("round trip")).To(Succeed())
		Expect(w.WriteAll(records)).To(Succeed())

		Expect(buf.String()).To(HavePrefix("# round trip\n1000 54000080 T 1010\n"))

		loaded, err := trace.ReadAll(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(records))
	})
})

var _ = Describe("SliceSource", func() {
	It("should serve records in order then io.EOF", func() {
		src := trace.NewSliceSource([]trace.Record{{PC: 1}, {PC: 2}})

		rec, err := src.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.PC).To(Equal(uint64(1)))

		rec, _ = src.Next()
		Expect(rec.PC).To(Equal(uint64(2)))

		_, err = src.Next()
		Expect(err).To(MatchError(io.EOF))
	})
})
