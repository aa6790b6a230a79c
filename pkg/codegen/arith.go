package codegen

import (
	"fmt"

	"hackvm/pkg/vm"
)

// unaryOps rewrite the top of the stack in place.
var unaryOps = map[string]string{
	"neg": "-M",
	"not": "!M",
}

// binaryOps combine the two top cells into one. D holds the top cell and M
// the one below it.
var binaryOps = map[string]string{
	"add": "D+M",
	"sub": "M-D",
	"and": "D&M",
	"or":  "D|M",
}

// compareJumps branch when the comparison holds.
var compareJumps = map[string]string{
	"eq": "JEQ",
	"gt": "JGT",
	"lt": "JLT",
}

// CompareLabels returns the branch and join labels of comparison n.
func CompareLabels(n int) (skip, end string) {
	return fmt.Sprintf("SKIP.%d", n), fmt.Sprintf("END.%d", n)
}

func genArithmetic(st *State, cmd vm.Command) (string, error) {
	op := cmd.Mnemonic()
	var b asmBuilder

	if comp, ok := unaryOps[op]; ok {
		b.line("@SP")
		b.line("A=M-1")
		b.line("M=%s", comp)
		return b.String(), nil
	}

	if comp, ok := binaryOps[op]; ok {
		b.popD()
		b.line("A=A-1")
		b.line("M=%s", comp)
		return b.String(), nil
	}

	if jump, ok := compareJumps[op]; ok {
		skip, end := CompareLabels(st.NextCompare())
		b.popD()
		b.line("A=A-1")
		b.line("D=M-D")
		b.line("@%s", skip)
		b.line("D;%s", jump)
		b.line("@SP")
		b.line("A=M-1")
		b.line("M=0")
		b.line("@%s", end)
		b.line("0;JMP")
		b.label(skip)
		b.line("@SP")
		b.line("A=M-1")
		b.line("M=-1")
		b.label(end)
		return b.String(), nil
	}

	return "", vm.Unrecognized(cmd, op)
}
