package vm

import (
	"fmt"
	"strings"
)

// Kind identifies the category of a classified command.
type Kind int

const (
	Push Kind = iota
	Pop
	Label
	Goto
	IfGoto
	Function
	Return
	Call
	Arithmetic
)

// kindNames is indexed by Kind and holds the source keyword for each kind.
var kindNames = [...]string{
	Push:       "push",
	Pop:        "pop",
	Label:      "label",
	Goto:       "goto",
	IfGoto:     "if-goto",
	Function:   "function",
	Return:     "return",
	Call:       "call",
	Arithmetic: "arithmetic",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every Kind in declaration order.
func Kinds() []Kind {
	return []Kind{Push, Pop, Label, Goto, IfGoto, Function, Return, Call, Arithmetic}
}

// Segment is a named memory region addressed by push and pop.
type Segment int

const (
	Constant Segment = iota
	Local
	Argument
	This
	That
	Static
	Pointer
	Temp
)

var segmentNames = [...]string{
	Constant: "constant",
	Local:    "local",
	Argument: "argument",
	This:     "this",
	That:     "that",
	Static:   "static",
	Pointer:  "pointer",
	Temp:     "temp",
}

func (s Segment) String() string {
	if int(s) >= 0 && int(s) < len(segmentNames) {
		return segmentNames[s]
	}
	return fmt.Sprintf("Segment(%d)", int(s))
}

// ParseSegment maps a segment keyword to its Segment.
func ParseSegment(name string) (Segment, bool) {
	for i, n := range segmentNames {
		if n == name {
			return Segment(i), true
		}
	}
	return 0, false
}

// Command is a single classified source line. Commands are values and are
// never mutated after classification.
type Command struct {
	Raw  string // cleaned source text, used for echo comments
	Kind Kind
	Args []string
	Unit string // namespace of the source unit, may be empty
	Line int    // 1-based source line
}

// Mnemonic returns the first token of the command: the keyword for control
// kinds and the operator for Arithmetic.
func (c Command) Mnemonic() string {
	if c.Kind == Arithmetic {
		if i := strings.IndexAny(c.Raw, " \t"); i >= 0 {
			return c.Raw[:i]
		}
		return c.Raw
	}
	return c.Kind.String()
}

// Arg returns the i'th argument or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Position renders "unit:line" for diagnostics.
func (c Command) Position() string {
	switch {
	case c.Unit != "" && c.Line > 0:
		return fmt.Sprintf("%s:%d", c.Unit, c.Line)
	case c.Line > 0:
		return fmt.Sprintf("line %d", c.Line)
	case c.Unit != "":
		return c.Unit
	}
	return "<input>"
}

func (c Command) String() string {
	return fmt.Sprintf("%-10s %-24q  %s", c.Kind, c.Raw, c.Position())
}
