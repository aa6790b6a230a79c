package vm

import "strings"

// CommentMarker starts a comment that runs to the end of the line.
const CommentMarker = "//"

// keywords maps control keywords to their Kind.
var keywords = map[string]Kind{
	"push":     Push,
	"pop":      Pop,
	"label":    Label,
	"goto":     Goto,
	"if-goto":  IfGoto,
	"function": Function,
	"return":   Return,
	"call":     Call,
}

// operators holds the arithmetic and logical mnemonics.
var operators = map[string]bool{
	"add": true,
	"sub": true,
	"neg": true,
	"eq":  true,
	"gt":  true,
	"lt":  true,
	"and": true,
	"or":  true,
	"not": true,
}

// Clean strips the comment and surrounding whitespace from a source line.
func Clean(line string) string {
	if i := strings.Index(line, CommentMarker); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// Classify turns one source line into a Command. It reports false when the
// line holds nothing but whitespace or a comment.
func Classify(unit string, lineNo int, line string) (Command, bool, error) {
	text := Clean(line)
	if text == "" {
		return Command{}, false, nil
	}

	fields := strings.Fields(text)
	cmd := Command{Raw: text, Unit: unit, Line: lineNo}
	if len(fields) > 1 {
		cmd.Args = fields[1:]
	}

	if kind, ok := keywords[fields[0]]; ok {
		cmd.Kind = kind
		return cmd, true, nil
	}
	if operators[fields[0]] {
		cmd.Kind = Arithmetic
		return cmd, true, nil
	}
	return Command{}, false, Unrecognized(cmd, fields[0])
}

// IsOperator reports whether mnemonic is an arithmetic or logical operator.
func IsOperator(mnemonic string) bool {
	return operators[mnemonic]
}
