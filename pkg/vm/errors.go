package vm

import "fmt"

// UnrecognizedCommandError reports a token that names no known command or
// arithmetic operator.
type UnrecognizedCommandError struct {
	Unit  string
	Line  int
	Raw   string
	Token string
}

func (e *UnrecognizedCommandError) Error() string {
	return fmt.Sprintf("%s: unrecognized command %q in %q", position(e.Unit, e.Line), e.Token, e.Raw)
}

// ValidationError reports a recognized command whose arguments are invalid.
type ValidationError struct {
	Unit   string
	Line   int
	Raw    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid command %q: %s", position(e.Unit, e.Line), e.Raw, e.Reason)
}

// Invalid builds a ValidationError for cmd.
func Invalid(cmd Command, format string, args ...any) *ValidationError {
	return &ValidationError{
		Unit:   cmd.Unit,
		Line:   cmd.Line,
		Raw:    cmd.Raw,
		Reason: fmt.Sprintf(format, args...),
	}
}

// Unrecognized builds an UnrecognizedCommandError for cmd and token.
func Unrecognized(cmd Command, token string) *UnrecognizedCommandError {
	return &UnrecognizedCommandError{Unit: cmd.Unit, Line: cmd.Line, Raw: cmd.Raw, Token: token}
}

func position(unit string, line int) string {
	return Command{Unit: unit, Line: line}.Position()
}
