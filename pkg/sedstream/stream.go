// Package sedstream implements the Stream Layer (spec.md §4.1): a uniform
// read/write view over a heterogeneous, possibly chained, list of sources
// and sinks (files, in-memory byte/char buffers, caller-supplied readers,
// stdio), with deterministic EOF coalescing and squeezed-newline synthesis
// between chained script elements.
//
// It generalizes the teacher's sed.go readAllLines/lineReader pair, which
// only ever chained whole files read eagerly into memory, into a streaming
// chain that can mix file, in-memory, and native-stream sources and does
// not require reading the entire input before the first line is produced.
package sedstream

import (
	"errors"
	"io"

	"github.com/rcarmo/hawksed/pkg/core/fs"
)

// Kind identifies the shape of a Source's backing data.
type Kind int

const (
	// KindFile reads from a named filesystem path (or "-" for stdio).
	KindFile Kind = iota
	// KindBytes reads from an in-memory byte slice.
	KindBytes
	// KindChars reads from an in-memory string.
	KindChars
	// KindNative reads from a caller-supplied io.Reader.
	KindNative
)

// Source describes one element of a chained input list.
type Source struct {
	Kind   Kind
	Path   string    // KindFile; "-" means stdin/stdout depending on direction
	Bytes  []byte    // KindBytes
	Chars  string    // KindChars
	Native io.Reader // KindNative
	Stdin  io.Reader // backing reader for Path == "-" on read chains
	Name   string    // symbolic name for diagnostics; defaulted if empty
}

func (s Source) name() string {
	if s.Name != "" {
		return s.Name
	}
	switch s.Kind {
	case KindFile:
		if s.Path == "-" || s.Path == "" {
			return "stdin"
		}
		return s.Path
	case KindBytes:
		return "<bytes>"
	case KindChars:
		return "<chars>"
	default:
		return "<stream>"
	}
}

// OpenError is returned when a Source cannot be opened; it carries the
// offending element's symbolic name per spec §4.1's failure semantics.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string { return "sedstream: open " + e.Name + ": " + e.Err.Error() }
func (e *OpenError) Unwrap() error { return e.Err }

func openSource(s Source) (io.ReadCloser, error) {
	switch s.Kind {
	case KindFile:
		if s.Path == "-" || s.Path == "" {
			if s.Stdin != nil {
				return io.NopCloser(s.Stdin), nil
			}
			return io.NopCloser(errReader{io.EOF}), nil
		}
		f, err := fs.Open(s.Path)
		if err != nil {
			return nil, &OpenError{Name: s.name(), Err: err}
		}
		return f, nil
	case KindBytes:
		return io.NopCloser(newByteReader(s.Bytes)), nil
	case KindChars:
		return io.NopCloser(newByteReader([]byte(s.Chars))), nil
	case KindNative:
		if rc, ok := s.Native.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(s.Native), nil
	default:
		return nil, &OpenError{Name: s.name(), Err: errors.New("unknown source kind")}
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

type byteReader struct {
	b   []byte
	pos int
}

func newByteReader(b []byte) *byteReader { return &byteReader{b: b} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}

// Chain reads a sequence of Sources as one logical byte stream, opening
// each element lazily the first time it is needed and advancing to the
// next on EOF of the current one. When SynthesizeNewlines is set (used
// for script-stream elements, never for data-stream elements per spec
// §4.1), a single '\n' is inserted between two elements if the closing
// element's last byte read was not itself a newline.
type Chain struct {
	sources           []Source
	SynthesizeNewlines bool

	idx      int
	cur      io.ReadCloser
	curName  string
	lastByte byte
	haveLast bool
	pendingNL bool
	eof      bool
}

// NewChain builds a Chain over sources. The list must be non-empty.
func NewChain(sources []Source, synthesizeNewlines bool) *Chain {
	return &Chain{sources: sources, SynthesizeNewlines: synthesizeNewlines}
}

// CurrentName returns the symbolic name of the element currently being read,
// used to annotate I/O errors with the offending source per spec §4.1.
func (c *Chain) CurrentName() string {
	if c.curName != "" {
		return c.curName
	}
	if c.idx < len(c.sources) {
		return c.sources[c.idx].name()
	}
	return ""
}

func (c *Chain) advance() error {
	if c.cur != nil {
		_ = c.cur.Close()
		c.cur = nil
	}
	if c.idx >= len(c.sources) {
		c.eof = true
		return io.EOF
	}
	s := c.sources[c.idx]
	c.idx++
	rc, err := openSource(s)
	if err != nil {
		return err
	}
	c.cur = rc
	c.curName = s.name()
	if c.SynthesizeNewlines && c.haveLast && c.lastByte != '\n' {
		c.pendingNL = true
	}
	return nil
}

// Read implements io.Reader across the chained sources.
func (c *Chain) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.pendingNL {
		p[0] = '\n'
		c.pendingNL = false
		c.lastByte = '\n'
		c.haveLast = true
		return 1, nil
	}
	if c.eof {
		return 0, io.EOF
	}
	for {
		if c.cur == nil {
			if err := c.advance(); err != nil {
				return 0, err
			}
			if c.pendingNL {
				p[0] = '\n'
				c.pendingNL = false
				c.lastByte = '\n'
				c.haveLast = true
				return 1, nil
			}
		}
		n, err := c.cur.Read(p)
		if n > 0 {
			c.lastByte = p[n-1]
			c.haveLast = true
			return n, nil
		}
		if err == io.EOF {
			c.cur = nil
			continue
		}
		if err != nil {
			return 0, &OpenError{Name: c.curName, Err: err}
		}
	}
}

// Close closes the currently open element, if any.
func (c *Chain) Close() error {
	if c.cur != nil {
		err := c.cur.Close()
		c.cur = nil
		return err
	}
	return nil
}
