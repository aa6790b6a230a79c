package codegen

import (
	"fmt"

	"hackvm/pkg/vm"
)

const (
	// StackBase is the address the stack pointer starts at.
	StackBase = 256
	// DefaultEntry is the function the bootstrap sequence calls.
	DefaultEntry = "Sys.init"

	// frameWords counts the return address and the four saved segment bases.
	frameWords = 5

	frameScratch  = "R14" // endFrame
	returnScratch = "R15" // return address
)

// savedRegisters are pushed by call in this order and restored by return in
// reverse.
var savedRegisters = []string{"LCL", "ARG", "THIS", "THAT"}

// ReturnLabel returns the continuation label of call site n of fn.
func ReturnLabel(fn string, n int) string {
	return fmt.Sprintf("%s$ret.%d", fn, n)
}

// validSymbol reports whether s can be used as a Hack assembler symbol.
func validSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '_', r == '.', r == '$', r == ':':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func symbolArg(cmd vm.Command) (string, error) {
	name := cmd.Arg(0)
	if !validSymbol(name) {
		return "", vm.Invalid(cmd, "%q is not a valid symbol", name)
	}
	return name, nil
}

func genLabel(_ *State, cmd vm.Command) (string, error) {
	name, err := symbolArg(cmd)
	if err != nil {
		return "", err
	}
	var b asmBuilder
	b.label(name)
	return b.String(), nil
}

func genGoto(_ *State, cmd vm.Command) (string, error) {
	name, err := symbolArg(cmd)
	if err != nil {
		return "", err
	}
	var b asmBuilder
	b.line("@%s", name)
	b.line("0;JMP")
	return b.String(), nil
}

func genIfGoto(_ *State, cmd vm.Command) (string, error) {
	name, err := symbolArg(cmd)
	if err != nil {
		return "", err
	}
	var b asmBuilder
	b.popD()
	b.line("@%s", name)
	b.line("D;JNE")
	return b.String(), nil
}

func genFunction(_ *State, cmd vm.Command) (string, error) {
	name, err := symbolArg(cmd)
	if err != nil {
		return "", err
	}
	nVars, err := parseCount(cmd, "local count", cmd.Arg(1))
	if err != nil {
		return "", err
	}

	var b asmBuilder
	b.label(name)
	for i := 0; i < nVars; i++ {
		b.line("@SP")
		b.line("M=M+1")
		b.line("A=M-1")
		b.line("M=0")
	}
	return b.String(), nil
}

func genCall(st *State, cmd vm.Command) (string, error) {
	name, err := symbolArg(cmd)
	if err != nil {
		return "", err
	}
	nArgs, err := parseCount(cmd, "argument count", cmd.Arg(1))
	if err != nil {
		return "", err
	}
	ret := ReturnLabel(name, st.NextCallSite(name))

	var b asmBuilder
	b.line("@%s", ret)
	b.line("D=A")
	b.pushD()
	for _, reg := range savedRegisters {
		b.line("@%s", reg)
		b.line("D=M")
		b.pushD()
	}

	// ARG = SP - 5 - nArgs
	b.line("@%d", frameWords+nArgs)
	b.line("D=A")
	b.line("@SP")
	b.line("D=M-D")
	b.line("@ARG")
	b.line("M=D")

	// LCL = SP
	b.line("@SP")
	b.line("D=M")
	b.line("@LCL")
	b.line("M=D")

	b.line("@%s", name)
	b.line("0;JMP")
	b.label(ret)
	return b.String(), nil
}

func genReturn(_ *State, _ vm.Command) (string, error) {
	var b asmBuilder

	// endFrame = LCL; retAddr = *(endFrame - 5)
	b.line("@LCL")
	b.line("D=M")
	b.line("@%s", frameScratch)
	b.line("M=D")
	b.line("@%d", frameWords)
	b.line("A=D-A")
	b.line("D=M")
	b.line("@%s", returnScratch)
	b.line("M=D")

	// *ARG = pop(); SP = ARG + 1
	b.popD()
	b.line("@ARG")
	b.line("A=M")
	b.line("M=D")
	b.line("@ARG")
	b.line("D=M+1")
	b.line("@SP")
	b.line("M=D")

	// THAT, THIS, ARG, LCL = *(endFrame - 1..4)
	for i := len(savedRegisters) - 1; i >= 0; i-- {
		b.line("@%s", frameScratch)
		b.line("AM=M-1")
		b.line("D=M")
		b.line("@%s", savedRegisters[i])
		b.line("M=D")
	}

	b.line("@%s", returnScratch)
	b.line("A=M")
	b.line("0;JMP")
	return b.String(), nil
}

// EntryCall returns the synthesized command the bootstrap uses to enter the
// program.
func EntryCall(entry string) vm.Command {
	return vm.Command{
		Raw:  "call " + entry + " 0",
		Kind: vm.Call,
		Args: []string{entry, "0"},
	}
}

// genBootstrap initializes SP, marks the segment bases as uninitialized and
// calls entry.
func genBootstrap(st *State, entry string) (string, error) {
	var b asmBuilder
	b.line("@%d", StackBase)
	b.line("D=A")
	b.line("@SP")
	b.line("M=D")

	// LCL..THAT = -1..-4, outside any valid segment
	b.line("D=-1")
	for i, reg := range savedRegisters {
		if i > 0 {
			b.line("D=D-1")
		}
		b.line("@%s", reg)
		b.line("M=D")
	}

	call, err := genCall(st, EntryCall(entry))
	if err != nil {
		return "", err
	}
	st.bootstrapped = true
	return b.String() + call, nil
}
