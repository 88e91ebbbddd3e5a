package sedstream

import (
	"bufio"
	"io"
	"strings"
)

// DefaultSinkCapacity is the buffered output capacity suggested by spec
// §3's "Output state" (flushed on newline or fill, and on cycle boundaries).
const DefaultSinkCapacity = 8192

// Sink is a line-buffered output handle: it flushes whenever a newline is
// written or its buffer fills, and whenever the caller calls Flush (done by
// the execution engine at every cycle boundary per spec §4.5's protocol).
type Sink struct {
	w   io.Writer
	buf *bufio.Writer
}

// NewSink wraps w with the default buffer capacity.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w, buf: bufio.NewWriterSize(w, DefaultSinkCapacity)}
}

// WriteString writes s, flushing immediately after any embedded newline.
func (s *Sink) WriteString(str string) error {
	if _, err := s.buf.WriteString(str); err != nil {
		return err
	}
	if strings.IndexByte(str, '\n') >= 0 {
		return s.buf.Flush()
	}
	if s.buf.Buffered() >= DefaultSinkCapacity {
		return s.buf.Flush()
	}
	return nil
}

// Flush forces any buffered bytes out to the underlying writer.
func (s *Sink) Flush() error {
	return s.buf.Flush()
}

// AuxSink is an auxiliary output sink for a w, W, or s///w target, tracked
// in the output file table (spec §3's "Output file table"). It may be
// opened eagerly by the compiler's post-pass or lazily by the executor on
// first write, depending on whether Options.OpenAux was supplied.
type AuxSink struct {
	Sink
	closer io.Closer
}

// OpenAuxSink opens path for writing (truncating), wrapped as an AuxSink.
func OpenAuxSink(path string, opener func(string) (io.WriteCloser, error)) (*AuxSink, error) {
	wc, err := opener(path)
	if err != nil {
		return nil, &OpenError{Name: path, Err: err}
	}
	return &AuxSink{Sink: Sink{w: wc, buf: bufio.NewWriterSize(wc, DefaultSinkCapacity)}, closer: wc}, nil
}

// Close flushes and closes the underlying file.
func (a *AuxSink) Close() error {
	if err := a.Flush(); err != nil {
		_ = a.closer.Close()
		return err
	}
	return a.closer.Close()
}
