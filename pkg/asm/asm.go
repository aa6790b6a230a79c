package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MaxAddress is the largest value an A-instruction can load.
	MaxAddress = 0x7FFF
	// VariableBase is the RAM address of the first allocated variable.
	VariableBase = 16
	// ROMSize is the number of instruction words the target can hold.
	ROMSize = 0x8000
)

// predefined holds the symbols every program can reference.
var predefined = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 0x4000,
	"KBD":    0x6000,
}

func init() {
	for i := 0; i < 16; i++ {
		predefined[fmt.Sprintf("R%d", i)] = uint16(i)
	}
}

// compCodes maps a computation to its a-bit and c1..c6 bits.
var compCodes = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"D+A": 0b0000010,
	"D-A": 0b0010011,
	"A-D": 0b0000111,
	"D&A": 0b0000000,
	"D|A": 0b0010101,
	"M":   0b1110000,
	"!M":  0b1110001,
	"-M":  0b1110011,
	"M+1": 0b1110111,
	"M-1": 0b1110010,
	"D+M": 0b1000010,
	"D-M": 0b1010011,
	"M-D": 0b1000111,
	"D&M": 0b1000000,
	"D|M": 0b1010101,

	// commutative spellings
	"A+D": 0b0000010,
	"A&D": 0b0000000,
	"A|D": 0b0010101,
	"M+D": 0b1000010,
	"M&D": 0b1000000,
	"M|D": 0b1010101,
}

var jumpCodes = map[string]uint16{
	"":    0b000,
	"JGT": 0b001,
	"JEQ": 0b010,
	"JGE": 0b011,
	"JLT": 0b100,
	"JNE": 0b101,
	"JLE": 0b110,
	"JMP": 0b111,
}

type lineKind int

const (
	blankLine lineKind = iota
	labelLine
	addressLine
	computeLine
)

type parsedLine struct {
	lineNo int
	kind   lineKind
	symbol string // label name or A-instruction operand
	dest   string
	comp   string
	jump   string
}

// Assembler translates Hack assembly into 16-bit instruction words.
type Assembler struct {
	symbols map[string]uint16
	nextVar uint16
}

func NewAssembler() *Assembler {
	a := &Assembler{
		symbols: make(map[string]uint16, len(predefined)),
		nextVar: VariableBase,
	}
	for k, v := range predefined {
		a.symbols[k] = v
	}
	return a
}

// Assemble translates code and returns the program words together with a
// map from ROM address to 1-based source line.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	lines := strings.Split(code, "\n")
	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, nil, err
		}
		parsed = append(parsed, p)
	}

	if err := a.pass1(parsed); err != nil {
		return nil, nil, err
	}
	return a.pass2(parsed)
}

// Symbols returns a copy of the symbol table built by the last Assemble,
// including labels and allocated variables.
func (a *Assembler) Symbols() map[string]uint16 {
	out := make(map[string]uint16, len(a.symbols))
	for k, v := range a.symbols {
		out[k] = v
	}
	return out
}

// pass1 binds every label to the ROM address of the instruction after it.
func (a *Assembler) pass1(lines []parsedLine) error {
	var address int
	for _, p := range lines {
		switch p.kind {
		case labelLine:
			if _, exists := a.symbols[p.symbol]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", p.symbol, p.lineNo)
			}
			if address > MaxAddress {
				return fmt.Errorf("label '%s' on line %d points past ROM", p.symbol, p.lineNo)
			}
			a.symbols[p.symbol] = uint16(address)
		case addressLine, computeLine:
			address++
			if address > ROMSize {
				return fmt.Errorf("program too large near line %d", p.lineNo)
			}
		}
	}
	return nil
}

func (a *Assembler) pass2(lines []parsedLine) ([]uint16, map[uint16]int, error) {
	program := make([]uint16, 0, len(lines))
	sourceMap := make(map[uint16]int)

	for _, p := range lines {
		switch p.kind {
		case addressLine:
			val, err := a.resolve(p.symbol, p.lineNo)
			if err != nil {
				return nil, nil, err
			}
			sourceMap[uint16(len(program))] = p.lineNo
			program = append(program, val)

		case computeLine:
			instr, err := encodeCompute(p)
			if err != nil {
				return nil, nil, err
			}
			sourceMap[uint16(len(program))] = p.lineNo
			program = append(program, instr)
		}
	}
	return program, sourceMap, nil
}

// resolve returns the value of an A-instruction operand, allocating a
// variable the first time an unknown symbol is seen.
func (a *Assembler) resolve(operand string, lineNo int) (uint16, error) {
	if operand[0] >= '0' && operand[0] <= '9' {
		v, err := strconv.ParseUint(operand, 10, 16)
		if err != nil || v > MaxAddress {
			return 0, fmt.Errorf("constant out of range on line %d: %s", lineNo, operand)
		}
		return uint16(v), nil
	}
	if addr, ok := a.symbols[operand]; ok {
		return addr, nil
	}
	if a.nextVar >= predefined["SCREEN"] {
		return 0, fmt.Errorf("out of variable space at '%s' on line %d", operand, lineNo)
	}
	addr := a.nextVar
	a.symbols[operand] = addr
	a.nextVar++
	return addr, nil
}

func encodeCompute(p parsedLine) (uint16, error) {
	comp, ok := compCodes[p.comp]
	if !ok {
		return 0, fmt.Errorf("invalid computation '%s' on line %d", p.comp, p.lineNo)
	}
	dest, err := destBits(p.dest)
	if err != nil {
		return 0, errors.Wrapf(err, "line %d", p.lineNo)
	}
	jump, ok := jumpCodes[p.jump]
	if !ok {
		return 0, fmt.Errorf("invalid jump '%s' on line %d", p.jump, p.lineNo)
	}
	return 0xE000 | comp<<6 | dest<<3 | jump, nil
}

// destBits accepts the destination registers in any order.
func destBits(dest string) (uint16, error) {
	var bits uint16
	for _, r := range dest {
		var bit uint16
		switch r {
		case 'A':
			bit = 0b100
		case 'D':
			bit = 0b010
		case 'M':
			bit = 0b001
		default:
			return 0, fmt.Errorf("invalid destination '%s'", dest)
		}
		if bits&bit != 0 {
			return 0, fmt.Errorf("repeated register in destination '%s'", dest)
		}
		bits |= bit
	}
	return bits, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	switch {
	case strings.HasPrefix(line, "("):
		if !strings.HasSuffix(line, ")") {
			return p, fmt.Errorf("unterminated label on line %d", lineNo)
		}
		name := strings.TrimSpace(line[1 : len(line)-1])
		if !isSymbol(name) {
			return p, fmt.Errorf("invalid label '%s' on line %d", name, lineNo)
		}
		p.kind = labelLine
		p.symbol = name
		return p, nil

	case strings.HasPrefix(line, "@"):
		operand := strings.TrimSpace(line[1:])
		if operand == "" {
			return p, fmt.Errorf("missing operand on line %d", lineNo)
		}
		if !isNumber(operand) && !isSymbol(operand) {
			return p, fmt.Errorf("invalid operand '%s' on line %d", operand, lineNo)
		}
		p.kind = addressLine
		p.symbol = operand
		return p, nil
	}

	line = strings.Join(strings.Fields(line), "")
	p.kind = computeLine
	if eq := strings.IndexByte(line, '='); eq >= 0 {
		p.dest = line[:eq]
		line = line[eq+1:]
		if p.dest == "" {
			return p, fmt.Errorf("empty destination on line %d", lineNo)
		}
	}
	if semi := strings.IndexByte(line, ';'); semi >= 0 {
		p.jump = line[semi+1:]
		line = line[:semi]
		if p.jump == "" {
			return p, fmt.Errorf("empty jump on line %d", lineNo)
		}
	}
	p.comp = line
	if p.comp == "" {
		return p, fmt.Errorf("missing computation on line %d", lineNo)
	}
	return p, nil
}

func stripComments(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// isSymbol reports whether s is a Hack symbol: letters, digits and _ . $ :
// not starting with a digit.
func isSymbol(s string) bool {
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
