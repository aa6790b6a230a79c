package vm

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// Scanner reads commands from one source unit, in line order. A Scanner is
// single pass; it cannot be rewound.
type Scanner struct {
	unit string
	in   *bufio.Scanner
	line int
	cmd  Command
	err  error
}

// MaxLineLength bounds a single source line, comment included.
const MaxLineLength = 16 << 20

// NewScanner returns a Scanner reading the unit named unit from r.
func NewScanner(unit string, r io.Reader) *Scanner {
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	return &Scanner{unit: unit, in: in}
}

// Scan advances to the next command. It returns false at end of input or on
// the first error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.in.Scan() {
		s.line++
		cmd, ok, err := Classify(s.unit, s.line, s.in.Text())
		if err != nil {
			s.err = err
			return false
		}
		if ok {
			s.cmd = cmd
			return true
		}
	}
	if err := s.in.Err(); err != nil {
		s.err = errors.Wrapf(err, "read %s", s.unit)
	}
	return false
}

// Command returns the command produced by the last successful Scan.
func (s *Scanner) Command() Command {
	return s.cmd
}

// Err returns the first error met by Scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// ScanAll classifies every line of r.
func ScanAll(unit string, r io.Reader) ([]Command, error) {
	var cmds []Command
	s := NewScanner(unit, r)
	for s.Scan() {
		cmds = append(cmds, s.Command())
	}
	return cmds, s.Err()
}
