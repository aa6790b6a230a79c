package codegen

import (
	"io"
	"strings"
)

// Sink receives assembly fragments in emission order.
type Sink interface {
	WriteFragment(fragment string) error
}

// WriterSink appends fragments to an io.Writer.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink returns a Sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteFragment(fragment string) error {
	_, err := io.WriteString(s.w, fragment)
	return err
}

// BufferSink keeps fragments in memory.
type BufferSink struct {
	out       strings.Builder
	fragments []string
}

func (s *BufferSink) WriteFragment(fragment string) error {
	s.out.WriteString(fragment)
	s.fragments = append(s.fragments, fragment)
	return nil
}

// Fragments returns the fragments received so far.
func (s *BufferSink) Fragments() []string {
	return s.fragments
}

// String returns the concatenated output.
func (s *BufferSink) String() string {
	return s.out.String()
}
