package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	errFieldCount = errors.New("expected 4 fields: pc word dir target")
	errDirection  = errors.New("direction must be T or N")
)

// Source yields trace records one at a time. Next returns io.EOF after the
// last record.
type Source interface {
	Next() (Record, error)
}

// Reader parses the text trace format.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record, io.EOF at the end of input, or a
// *ParseError for a malformed line.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()

		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		rec, err := parseFields(fields)
		if err != nil {
			return Record{}, &ParseError{Line: r.line, Text: r.scanner.Text(), Err: err}
		}
		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("failed to read trace: %w", err)
	}
	return Record{}, io.EOF
}

func parseFields(fields []string) (Record, error) {
	if len(fields) != 4 {
		return Record{}, errFieldCount
	}

	pc, err := parseHex(fields[0], 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad pc: %w", err)
	}
	word, err := parseHex(fields[1], 32)
	if err != nil {
		return Record{}, fmt.Errorf("bad instruction word: %w", err)
	}
	target, err := parseHex(fields[3], 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad target: %w", err)
	}

	var taken bool
	switch fields[2] {
	case "T", "t":
		taken = true
	case "N", "n":
		taken = false
	default:
		return Record{}, errDirection
	}

	return Record{PC: pc, Word: uint32(word), Taken: taken, Target: target}, nil
}

func parseHex(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, bits)
}

// ReadAll reads every record of r into memory.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)

	var records []Record
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []Record
	next    int
}

// NewSliceSource creates a Source over records.
func NewSliceSource(records []Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next implements Source.
func (s *SliceSource) Next() (Record, error) {
	if s.next >= len(s.records) {
		return Record{}, io.EOF
	}
	rec := s.records[s.next]
	s.next++
	return rec, nil
}
