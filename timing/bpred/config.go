package bpred

import (
	"encoding/json"
	"fmt"
	"os"
)

// maxCounterWidth bounds counter width; cells are stored as bytes.
const maxCounterWidth = 8

// maxAddrShift bounds the number of PC bits dropped before indexing.
const maxAddrShift = 16

// Scheme selects the direction predictor organization.
type Scheme uint8

// Predictor schemes.
const (
	SchemeTaken Scheme = iota
	SchemeNotTaken
	SchemeBimodal
	SchemeTwoLevel
	SchemeCombining
	SchemeGshare
)

var schemeNames = map[Scheme]string{
	SchemeTaken:     "taken",
	SchemeNotTaken:  "nottaken",
	SchemeBimodal:   "bimod",
	SchemeTwoLevel:  "2lev",
	SchemeCombining: "comb",
	SchemeGshare:    "gshare",
}

// Schemes lists every scheme in declaration order.
func Schemes() []Scheme {
	return []Scheme{
		SchemeTaken,
		SchemeNotTaken,
		SchemeBimodal,
		SchemeTwoLevel,
		SchemeCombining,
		SchemeGshare,
	}
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scheme(%d)", uint8(s))
}

// IsStatic reports whether the scheme keeps no predictor state.
func (s Scheme) IsStatic() bool {
	return s == SchemeTaken || s == SchemeNotTaken
}

// ParseScheme converts a scheme name such as "gshare" into a Scheme.
func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, newConfigError("scheme", name, "is not a known predictor scheme")
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Replacement is the BTB replacement policy within a set.
type Replacement uint8

// BTB replacement policies.
const (
	// ReplaceLRU refreshes recency on every taken update.
	ReplaceLRU Replacement = iota
	// ReplaceFIFO sets recency only when an entry is filled.
	ReplaceFIFO
)

func (r Replacement) String() string {
	switch r {
	case ReplaceLRU:
		return "lru"
	case ReplaceFIFO:
		return "fifo"
	default:
		return fmt.Sprintf("replacement(%d)", uint8(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Replacement) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Replacement) UnmarshalText(text []byte) error {
	switch string(text) {
	case "lru":
		*r = ReplaceLRU
	case "fifo":
		*r = ReplaceFIFO
	default:
		return newConfigError("btb_replacement", string(text), "must be lru or fifo")
	}
	return nil
}

// RASPushPolicy decides when a call pushes its return address.
type RASPushPolicy uint8

// RAS push policies.
const (
	// PushAtPredict pushes speculatively during Predict.
	PushAtPredict RASPushPolicy = iota
	// PushAtCommit pushes only when the call is committed.
	PushAtCommit
)

func (p RASPushPolicy) String() string {
	switch p {
	case PushAtPredict:
		return "predict"
	case PushAtCommit:
		return "commit"
	default:
		return fmt.Sprintf("ras_push(%d)", uint8(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p RASPushPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *RASPushPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "predict":
		*p = PushAtPredict
	case "commit":
		*p = PushAtCommit
	default:
		return newConfigError("ras_push", string(text), "must be predict or commit")
	}
	return nil
}

// Config holds construction-time parameters of a predictor. Parameters a
// scheme does not use are ignored by it.
type Config struct {
	// Scheme selects the direction predictor. Default: bimod.
	Scheme Scheme `json:"scheme"`

	// BimodSize is the number of counters in the bimodal table; gshare
	// uses it as its pattern table size. Default: 2048.
	BimodSize uint32 `json:"bimod_size"`

	// L1Size is the number of first-level history registers of the
	// two-level predictor. Default: 1 (global history).
	L1Size uint32 `json:"l1_size"`

	// L2Size is the number of second-level counters. Default: 1024.
	L2Size uint32 `json:"l2_size"`

	// MetaSize is the number of meta counters of the combining
	// predictor. Default: 1024.
	MetaSize uint32 `json:"meta_size"`

	// HistoryWidth is the width of every history register, 1..20.
	// Default: 8.
	HistoryWidth uint32 `json:"history_width"`

	// XOR folds the two-level history with PC bits. Default: false.
	XOR bool `json:"xor"`

	// CounterWidth is the bit width of every counter, 1..8. Default: 2.
	CounterWidth uint32 `json:"counter_width"`

	// AddrShift is the number of low PC bits dropped before indexing.
	// Default: 2 (4-byte instructions).
	AddrShift uint32 `json:"addr_shift"`

	// InstSize is the instruction size in bytes; calls push PC+InstSize.
	// Default: 4.
	InstSize uint64 `json:"inst_size"`

	// BTBSets is the number of BTB sets. Default: 512.
	BTBSets uint32 `json:"btb_sets"`

	// BTBAssoc is the BTB associativity. Default: 4.
	BTBAssoc uint32 `json:"btb_assoc"`

	// BTBReplacement is lru or fifo. Default: lru.
	BTBReplacement Replacement `json:"btb_replacement"`

	// RASSize is the number of return address stack entries; 0 disables
	// the stack. Default: 8.
	RASSize uint32 `json:"ras_size"`

	// RASPush is predict (speculative) or commit. Default: predict.
	RASPush RASPushPolicy `json:"ras_push"`

	// MispredictPenalty is the number of fetch cycles lost per redirect.
	// It does not affect prediction. Default: 12.
	MispredictPenalty uint64 `json:"mispredict_penalty"`
}

// DefaultConfig returns a Config with the classic sim-outorder defaults.
func DefaultConfig() *Config {
	return &Config{
		Scheme:            SchemeBimodal,
		BimodSize:         2048,
		L1Size:            1,
		L2Size:            1024,
		MetaSize:          1024,
		HistoryWidth:      8,
		XOR:               false,
		CounterWidth:      2,
		AddrShift:         2,
		InstSize:          4,
		BTBSets:           512,
		BTBAssoc:          4,
		BTBReplacement:    ReplaceLRU,
		RASSize:           8,
		RASPush:           PushAtPredict,
		MispredictPenalty: 12,
	}
}

// LoadConfig loads a Config from a JSON file. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictor config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse predictor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize predictor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write predictor config file: %w", err)
	}

	return nil
}

// Validate checks every parameter the configured scheme uses. The returned
// error is a *ConfigError.
func (c *Config) Validate() error {
	if _, ok := schemeNames[c.Scheme]; !ok {
		return newConfigError("scheme", c.Scheme, "is not a known predictor scheme")
	}
	if c.Scheme.IsStatic() {
		return nil
	}

	if err := checkCounterWidth(c.CounterWidth); err != nil {
		return err
	}
	if c.AddrShift > maxAddrShift {
		return newConfigError("addr_shift", c.AddrShift,
			fmt.Sprintf("must be at most %d", maxAddrShift))
	}
	if c.InstSize == 0 {
		return newConfigError("inst_size", c.InstSize, "must be non-zero")
	}

	if err := c.validateDirection(); err != nil {
		return err
	}

	if err := checkTableSize("btb_sets", c.BTBSets); err != nil {
		return err
	}
	if err := checkTableSize("btb_assoc", c.BTBAssoc); err != nil {
		return err
	}
	if c.BTBReplacement != ReplaceLRU && c.BTBReplacement != ReplaceFIFO {
		return newConfigError("btb_replacement", c.BTBReplacement, "must be lru or fifo")
	}
	if c.RASPush != PushAtPredict && c.RASPush != PushAtCommit {
		return newConfigError("ras_push", c.RASPush, "must be predict or commit")
	}

	return nil
}

func (c *Config) validateDirection() error {
	var checks []func() error

	switch c.Scheme {
	case SchemeBimodal:
		checks = append(checks, c.checkBimod)
	case SchemeGshare:
		checks = append(checks, c.checkBimod, c.checkHistory)
	case SchemeTwoLevel:
		checks = append(checks, c.checkTwoLevel, c.checkHistory)
	case SchemeCombining:
		checks = append(checks, c.checkBimod, c.checkTwoLevel, c.checkHistory, c.checkMeta)
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) checkBimod() error {
	return checkTableSize("bimod_size", c.BimodSize)
}

func (c *Config) checkMeta() error {
	return checkTableSize("meta_size", c.MetaSize)
}

func (c *Config) checkHistory() error {
	return checkHistoryWidth(c.HistoryWidth)
}

func (c *Config) checkTwoLevel() error {
	if err := checkTableSize("l1_size", c.L1Size); err != nil {
		return err
	}
	return checkTableSize("l2_size", c.L2Size)
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
