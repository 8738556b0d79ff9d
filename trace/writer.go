package trace

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits records in the text trace format. Call Flush when done.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Comment writes a comment line.
func (w *Writer) Comment(text string) error {
	_, err := fmt.Fprintf(w.w, "# %s\n", text)
	return err
}

// Write writes one record.
func (w *Writer) Write(rec Record) error {
	_, err := fmt.Fprintln(w.w, rec.String())
	return err
}

// WriteAll writes every record and flushes.
func (w *Writer) WriteAll(records []Record) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write trace record: %w", err)
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
