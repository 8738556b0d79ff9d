package bpred_test

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bpsim/timing/bpred"
)

func configErrorOf(err error) *bpred.ConfigError {
	var cfgErr *bpred.ConfigError
	Expect(errors.As(err, &cfgErr)).To(BeTrue(), "expected a *ConfigError, got %v", err)
	return cfgErr
}

var _ = Describe("Config", func() {
	Describe("Default Config", func() {
		It("should use the classic defaults", func() {
			config := bpred.DefaultConfig()

			Expect(config.Scheme).To(Equal(bpred.SchemeBimodal))
			Expect(config.BimodSize).To(Equal(uint32(2048)))
			Expect(config.L1Size).To(Equal(uint32(1)))
			Expect(config.L2Size).To(Equal(uint32(1024)))
			Expect(config.HistoryWidth).To(Equal(uint32(8)))
			Expect(config.CounterWidth).To(Equal(uint32(2)))
			Expect(config.BTBSets).To(Equal(uint32(512)))
			Expect(config.BTBAssoc).To(Equal(uint32(4)))
			Expect(config.RASSize).To(Equal(uint32(8)))
			Expect(config.MispredictPenalty).To(Equal(uint64(12)))
		})

		It("should be valid for every scheme", func() {
			for _, scheme := range bpred.Schemes() {
				config := bpred.DefaultConfig()
				config.Scheme = scheme
				Expect(config.Validate()).To(Succeed(), scheme.String())
			}
		})
	})

	Describe("Validation", func() {
		DescribeTable("should reject bad parameters",
			func(mutate func(*bpred.Config), field string) {
				config := bpred.DefaultConfig()
				mutate(config)

				bp, err := bpred.New(config)
				Expect(bp).To(BeNil())
				Expect(configErrorOf(err).Field).To(Equal(field))
			},
			Entry("zero bimodal size", func(c *bpred.Config) {
				c.BimodSize = 0
			}, "bimod_size"),
			Entry("bimodal size not a power of two", func(c *bpred.Config) {
				c.BimodSize = 1000
			}, "bimod_size"),
			Entry("zero l1 size", func(c *bpred.Config) {
				c.Scheme = bpred.SchemeTwoLevel
				c.L1Size = 0
			}, "l1_size"),
			Entry("l2 size not a power of two", func(c *bpred.Config) {
				c.Scheme = bpred.SchemeTwoLevel
				c.L2Size = 1023
			}, "l2_size"),
			Entry("history too wide", func(c *bpred.Config) {
				c.Scheme = bpred.SchemeTwoLevel
				c.HistoryWidth = 21
			}, "history_width"),
			Entry("zero history for gshare", func(c *bpred.Config) {
				c.Scheme = bpred.SchemeGshare
				c.HistoryWidth = 0
			}, "history_width"),
			Entry("meta size not a power of two", func(c *bpred.Config) {
				c.Scheme = bpred.SchemeCombining
				c.MetaSize = 3
			}, "meta_size"),
			Entry("zero counter width", func(c *bpred.Config) {
				c.CounterWidth = 0
			}, "counter_width"),
			Entry("counter width above a byte", func(c *bpred.Config) {
				c.CounterWidth = 9
			}, "counter_width"),
			Entry("BTB sets not a power of two", func(c *bpred.Config) {
				c.BTBSets = 100
			}, "btb_sets"),
			Entry("zero BTB associativity", func(c *bpred.Config) {
				c.BTBAssoc = 0
			}, "btb_assoc"),
			Entry("zero instruction size", func(c *bpred.Config) {
				c.InstSize = 0
			}, "inst_size"),
			Entry("unknown scheme", func(c *bpred.Config) {
				c.Scheme = bpred.Scheme(42)
			}, "scheme"),
		)

		It("should ignore table sizes a scheme does not use", func() {
			config := bpred.DefaultConfig()
			config.Scheme = bpred.SchemeBimodal
			config.L2Size = 3
			config.MetaSize = 0

			Expect(config.Validate()).To(Succeed())
		})

		It("should ignore every table parameter for static schemes", func() {
			config := bpred.DefaultConfig()
			config.Scheme = bpred.SchemeTaken
			config.BimodSize = 0
			config.BTBSets = 3

			Expect(config.Validate()).To(Succeed())
		})

		It("should render the rejected value", func() {
			config := bpred.DefaultConfig()
			config.BimodSize = 1000

			err := config.Validate()
			Expect(err.Error()).To(Equal("bimod_size, `1000', must be non-zero and a power of two"))
		})
	})

	Describe("Scheme", func() {
		It("should parse every scheme name", func() {
			for _, scheme := range bpred.Schemes() {
				parsed, err := bpred.ParseScheme(scheme.String())
				Expect(err).NotTo(HaveOccurred())
				Expect(parsed).To(Equal(scheme))
			}
		})

		It("should reject unknown names", func() {
			_, err := bpred.ParseScheme("perceptron")
			Expect(configErrorOf(err).Field).To(Equal("scheme"))
		})

		It("should know which schemes are static", func() {
			Expect(bpred.SchemeTaken.IsStatic()).To(BeTrue())
			Expect(bpred.SchemeNotTaken.IsStatic()).To(BeTrue())
			Expect(bpred.SchemeGshare.IsStatic()).To(BeFalse())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := bpred.DefaultConfig()
			clone := original.Clone()

			clone.BimodSize = 64

			Expect(original.BimodSize).To(Equal(uint32(2048)))
			Expect(clone.BimodSize).To(Equal(uint32(64)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "bpred-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := bpred.DefaultConfig()
			original.Scheme = bpred.SchemeCombining
			original.XOR = true
			original.BTBReplacement = bpred.ReplaceFIFO
			original.RASPush = bpred.PushAtCommit

			path := filepath.Join(tempDir, "bpred.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := bpred.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Diff(original, loaded)).To(BeEmpty())
		})

		It("should write enums by name", func() {
			path := filepath.Join(tempDir, "bpred.json")
			Expect(bpred.DefaultConfig().SaveConfig(path)).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"scheme": "bimod"`))
			Expect(string(data)).To(ContainSubstring(`"btb_replacement": "lru"`))
			Expect(string(data)).To(ContainSubstring(`"ras_push": "predict"`))
		})

		It("should keep defaults for missing keys", func() {
			path := filepath.Join(tempDir, "partial.json")
			err := os.WriteFile(path, []byte(`{"scheme": "gshare", "history_width": 12}`), 0644)
			Expect(err).NotTo(HaveOccurred())

			loaded, err := bpred.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())

			want := bpred.DefaultConfig()
			want.Scheme = bpred.SchemeGshare
			want.HistoryWidth = 12
			Expect(cmp.Diff(want, loaded)).To(BeEmpty())
		})

		It("should report unknown enum names as config errors", func() {
			path := filepath.Join(tempDir, "bad.json")
			err := os.WriteFile(path, []byte(`{"btb_replacement": "random"}`), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = bpred.LoadConfig(path)
			Expect(configErrorOf(err).Field).To(Equal("btb_replacement"))
		})

		It("should return error for non-existent file", func() {
			_, err := bpred.LoadConfig("/nonexistent/path/bpred.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = bpred.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
