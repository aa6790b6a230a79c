package cpu

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// maxStackRows bounds the stack table rendered by FormatState.
const maxStackRows = 16

// FormatState renders registers, segment pointers, temp cells and the top
// of the VM stack as text tables.
func (c *CPU) FormatState(stackBase uint16) string {
	var b strings.Builder

	regs := table.NewWriter()
	regs.SetTitle("CPU")
	regs.AppendHeader(table.Row{"PC", "A", "D", "Cycles", "Halted"})
	regs.AppendRow(table.Row{c.PC, c.A, int16(c.D), c.Cycles, c.Halted})
	b.WriteString(regs.Render())
	b.WriteString("\n")

	segs := table.NewWriter()
	segs.SetTitle("Segments")
	segs.AppendHeader(table.Row{"SP", "LCL", "ARG", "THIS", "THAT"})
	segs.AppendRow(table.Row{
		int16(c.Peek(AddrSP)), int16(c.Peek(AddrLCL)), int16(c.Peek(AddrARG)),
		int16(c.Peek(AddrTHIS)), int16(c.Peek(AddrTHAT)),
	})
	b.WriteString(segs.Render())
	b.WriteString("\n")

	temp := table.NewWriter()
	temp.SetTitle("Temp")
	header := table.Row{}
	row := table.Row{}
	for i := uint16(0); i < 8; i++ {
		header = append(header, fmt.Sprintf("temp %d", i))
		row = append(row, int16(c.Peek(AddrTemp+i)))
	}
	temp.AppendHeader(header)
	temp.AppendRow(row)
	b.WriteString(temp.Render())
	b.WriteString("\n")

	stack := c.Stack(stackBase)
	st := table.NewWriter()
	st.SetTitle(fmt.Sprintf("Stack (%d cells)", len(stack)))
	st.AppendHeader(table.Row{"Address", "Value"})
	from := 0
	if len(stack) > maxStackRows {
		from = len(stack) - maxStackRows
	}
	for i := len(stack) - 1; i >= from; i-- {
		st.AppendRow(table.Row{int(stackBase) + i, int16(stack[i])})
	}
	b.WriteString(st.Render())
	b.WriteString("\n")
	return b.String()
}
