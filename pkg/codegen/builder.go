package codegen

import (
	"fmt"
	"strings"
)

// asmBuilder accumulates the lines of one assembly fragment.
type asmBuilder struct {
	out strings.Builder
}

func (b *asmBuilder) line(format string, args ...any) {
	fmt.Fprintf(&b.out, format+"\n", args...)
}

func (b *asmBuilder) label(name string) {
	b.line("(%s)", name)
}

// pushD pushes the D register onto the stack.
func (b *asmBuilder) pushD() {
	b.line("@SP")
	b.line("A=M")
	b.line("M=D")
	b.line("@SP")
	b.line("M=M+1")
}

// popD pops the top of the stack into D.
func (b *asmBuilder) popD() {
	b.line("@SP")
	b.line("AM=M-1")
	b.line("D=M")
}

func (b *asmBuilder) String() string {
	return b.out.String()
}
