package bpred

import "fmt"

// ConfigError reports a predictor parameter rejected at construction time.
type ConfigError struct {
	// Field names the offending parameter using its config file key.
	Field string
	// Value is the rejected value as written.
	Value string
	// Reason states the constraint that was violated.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s, `%s', %s", e.Field, e.Value, e.Reason)
}

func newConfigError(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}

// ProtocolViolation is the panic value raised when the predict/commit
// protocol is broken: a record committed twice, committed to the wrong
// predictor, or never issued.
type ProtocolViolation struct {
	Seq    uint64
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("bpred protocol violation (record %d): %s", e.Seq, e.Reason)
}

// checkTableSize enforces the non-zero power-of-two rule that makes mask
// indexing exact.
func checkTableSize(field string, size uint32) error {
	if size == 0 || size&(size-1) != 0 {
		return newConfigError(field, size, "must be non-zero and a power of two")
	}
	return nil
}

func checkHistoryWidth(width uint32) error {
	if width == 0 || width > maxHistoryWidth {
		return newConfigError("history_width", width,
			fmt.Sprintf("must be between 1 and %d", maxHistoryWidth))
	}
	return nil
}

func checkCounterWidth(width uint32) error {
	if width == 0 || width > maxCounterWidth {
		return newConfigError("counter_width", width,
			fmt.Sprintf("must be between 1 and %d", maxCounterWidth))
	}
	return nil
}
