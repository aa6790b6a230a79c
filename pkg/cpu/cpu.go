package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	ROMSize = 0x8000
	// RAMSize covers data memory, the screen map and the keyboard register.
	RAMSize = 0x6001

	ScreenBase   = 0x4000
	ScreenWords  = 0x2000
	ScreenWidth  = 512
	ScreenHeight = 256
	KeyboardAddr = 0x6000
)

// Conventional RAM locations used by translated VM programs.
const (
	AddrSP   uint16 = 0
	AddrLCL  uint16 = 1
	AddrARG  uint16 = 2
	AddrTHIS uint16 = 3
	AddrTHAT uint16 = 4
	AddrTemp uint16 = 5
)

// ErrCycleLimit is returned by Run when the program did not halt within the
// allowed number of cycles.
var ErrCycleLimit = errors.New("cycle limit reached")

// CPU emulates the Hack computer: a 16-bit CPU with separate instruction
// and data memories.
type CPU struct {
	A  uint16
	D  uint16
	PC uint16

	ROM []uint16
	RAM [RAMSize]uint16

	// Halted is set when the program counter leaves the program or the
	// program enters the (L) @L 0;JMP idle loop.
	Halted bool
	Cycles uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load copies program into ROM and resets the CPU.
func (c *CPU) Load(program []uint16) error {
	if len(program) > ROMSize {
		return fmt.Errorf("program too large for ROM: %d words > %d words", len(program), ROMSize)
	}
	c.ROM = append(c.ROM[:0], program...)
	c.Reset()
	return nil
}

// Reset clears the registers and the halt flag. RAM is left untouched, as
// on the real machine.
func (c *CPU) Reset() {
	c.A, c.D, c.PC = 0, 0, 0
	c.Halted = false
	c.Cycles = 0
}

// SetKey sets the key code read from the keyboard register; 0 means no key.
func (c *CPU) SetKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

// Peek reads a RAM cell; out of range addresses read as 0.
func (c *CPU) Peek(addr uint16) uint16 {
	if int(addr) >= RAMSize {
		return 0
	}
	return c.RAM[addr]
}

// Poke writes a RAM cell; out of range addresses are ignored.
func (c *CPU) Poke(addr, val uint16) {
	if int(addr) < RAMSize {
		c.RAM[addr] = val
	}
}

func (c *CPU) readM() (uint16, error) {
	if int(c.A) >= RAMSize {
		return 0, fmt.Errorf("read from RAM[%d] out of range at PC=%d", c.A, c.PC)
	}
	return c.RAM[c.A], nil
}

func (c *CPU) writeM(addr, val uint16) error {
	if int(addr) >= RAMSize {
		return fmt.Errorf("write to RAM[%d] out of range at PC=%d", addr, c.PC)
	}
	if addr == KeyboardAddr {
		return nil
	}
	c.RAM[addr] = val
	return nil
}

// alu computes the Hack ALU function selected by the c1..c6 bits.
func alu(x, y uint16, bits uint16) uint16 {
	if bits&0b100000 != 0 { // zx
		x = 0
	}
	if bits&0b010000 != 0 { // nx
		x = ^x
	}
	if bits&0b001000 != 0 { // zy
		y = 0
	}
	if bits&0b000100 != 0 { // ny
		y = ^y
	}
	var out uint16
	if bits&0b000010 != 0 { // f
		out = x + y
	} else {
		out = x & y
	}
	if bits&0b000001 != 0 { // no
		out = ^out
	}
	return out
}

func jumps(out uint16, cond uint16) bool {
	v := int16(out)
	return (cond&0b100 != 0 && v < 0) ||
		(cond&0b010 != 0 && v == 0) ||
		(cond&0b001 != 0 && v > 0)
}

// Step executes one instruction.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	if int(c.PC) >= len(c.ROM) {
		c.Halted = true
		return nil
	}

	pc := c.PC
	instr := c.ROM[pc]
	c.Cycles++

	if instr&0x8000 == 0 {
		c.A = instr
		c.PC++
		return nil
	}

	y := c.A
	if instr&0x1000 != 0 {
		m, err := c.readM()
		if err != nil {
			return err
		}
		y = m
	}
	out := alu(c.D, y, (instr>>6)&0x3F)

	addr := c.A
	dest := (instr >> 3) & 0b111
	if dest&0b001 != 0 {
		if err := c.writeM(addr, out); err != nil {
			return err
		}
	}
	if dest&0b100 != 0 {
		c.A = out
	}
	if dest&0b010 != 0 {
		c.D = out
	}

	if jumps(out, instr&0b111) {
		c.PC = addr
		if addr+1 == pc && c.ROM[addr] == addr {
			c.Halted = true
		}
		return nil
	}
	c.PC++
	return nil
}

// Run steps the CPU until it halts. A maxCycles of 0 means no limit.
func (c *CPU) Run(maxCycles uint64) (uint64, error) {
	start := c.Cycles
	for !c.Halted {
		if maxCycles > 0 && c.Cycles-start >= maxCycles {
			return c.Cycles - start, ErrCycleLimit
		}
		if err := c.Step(); err != nil {
			return c.Cycles - start, err
		}
	}
	return c.Cycles - start, nil
}

// Stack returns the cells between base and SP, bottom first.
func (c *CPU) Stack(base uint16) []uint16 {
	sp := c.Peek(AddrSP)
	if sp <= base || int(sp) > RAMSize {
		return nil
	}
	out := make([]uint16, int(sp-base))
	copy(out, c.RAM[base:sp])
	return out
}
