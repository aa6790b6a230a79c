package codegen

import (
	"fmt"
	"strconv"

	"hackvm/pkg/vm"
)

const (
	// TempBase is the RAM address of temp 0.
	TempBase = 5
	// TempSize is the number of temp cells.
	TempSize = 8
	// MaxConstant is the largest value an A-instruction can load.
	MaxConstant = 32767

	popScratch = "R13"
)

// segmentBases maps the indirectly addressed segments to their base register.
var segmentBases = map[vm.Segment]string{
	vm.Local:    "LCL",
	vm.Argument: "ARG",
	vm.This:     "THIS",
	vm.That:     "THAT",
}

// parseCount parses a non-negative decimal argument bounded by MaxConstant.
func parseCount(cmd vm.Command, what, s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n > MaxConstant {
		return 0, vm.Invalid(cmd, "%s %q is not an integer in 0..%d", what, s, MaxConstant)
	}
	return int(n), nil
}

// resolve decodes the segment and index of a push or pop.
func resolve(cmd vm.Command) (vm.Segment, int, error) {
	seg, ok := vm.ParseSegment(cmd.Arg(0))
	if !ok {
		return 0, 0, vm.Invalid(cmd, "unknown segment %q", cmd.Arg(0))
	}
	idx, err := parseCount(cmd, "index", cmd.Arg(1))
	if err != nil {
		return 0, 0, err
	}

	switch seg {
	case vm.Pointer:
		if idx > 1 {
			return 0, 0, vm.Invalid(cmd, "pointer index must be 0 or 1, got %d", idx)
		}
	case vm.Temp:
		if idx >= TempSize {
			return 0, 0, vm.Invalid(cmd, "temp index must be in 0..%d, got %d", TempSize-1, idx)
		}
	}
	return seg, idx, nil
}

// directAddress returns the symbol or literal addressing a segment cell
// whose location is known at translation time.
func directAddress(st *State, cmd vm.Command, seg vm.Segment, idx int) (string, error) {
	switch seg {
	case vm.Static:
		if st.Namespace() == "" {
			return "", vm.Invalid(cmd, "static segment used outside a source unit")
		}
		return StaticSymbol(st.Namespace(), idx), nil
	case vm.Pointer:
		if idx == 0 {
			return "THIS", nil
		}
		return "THAT", nil
	case vm.Temp:
		return strconv.Itoa(TempBase + idx), nil
	}
	return "", fmt.Errorf("segment %s has no direct address", seg)
}

// StaticSymbol returns the assembler symbol for static variable idx of the
// unit named ns.
func StaticSymbol(ns string, idx int) string {
	return fmt.Sprintf("%s.%d", ns, idx)
}

func genPush(st *State, cmd vm.Command) (string, error) {
	seg, idx, err := resolve(cmd)
	if err != nil {
		return "", err
	}

	var b asmBuilder
	switch seg {
	case vm.Constant:
		b.line("@%d", idx)
		b.line("D=A")
	case vm.Local, vm.Argument, vm.This, vm.That:
		b.line("@%d", idx)
		b.line("D=A")
		b.line("@%s", segmentBases[seg])
		b.line("A=D+M")
		b.line("D=M")
	default:
		addr, err := directAddress(st, cmd, seg, idx)
		if err != nil {
			return "", err
		}
		b.line("@%s", addr)
		b.line("D=M")
	}
	b.pushD()
	return b.String(), nil
}

func genPop(st *State, cmd vm.Command) (string, error) {
	seg, idx, err := resolve(cmd)
	if err != nil {
		return "", err
	}

	var b asmBuilder
	switch seg {
	case vm.Constant:
		return "", vm.Invalid(cmd, "cannot pop into the constant segment")
	case vm.Local, vm.Argument, vm.This, vm.That:
		b.line("@%d", idx)
		b.line("D=A")
		b.line("@%s", segmentBases[seg])
		b.line("D=D+M")
		b.line("@%s", popScratch)
		b.line("M=D")
		b.popD()
		b.line("@%s", popScratch)
		b.line("A=M")
		b.line("M=D")
	default:
		addr, err := directAddress(st, cmd, seg, idx)
		if err != nil {
			return "", err
		}
		b.popD()
		b.line("@%s", addr)
		b.line("M=D")
	}
	return b.String(), nil
}
