package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"hackvm/pkg/codegen"
	"hackvm/pkg/translator"
)

// countInstructions counts the lines of a fragment that assemble to a word.
func countInstructions(frag string) int {
	n := 0
	for _, line := range strings.Split(frag, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "(") {
			continue
		}
		n++
	}
	return n
}

// inspect translates units and tabulates every command with the fragment
// it produced.
func inspect(units []translator.Unit, opts codegen.Options, showFragments bool) (string, error) {
	entry := opts.Entry
	if entry == "" {
		entry = codegen.DefaultEntry
	}
	sink := &codegen.BufferSink{}
	e := codegen.NewEmitter(sink, opts)

	t := table.NewWriter()
	header := table.Row{"Position", "Kind", "Command", "Instructions"}
	if showFragments {
		header = append(header, "Assembly")
	}
	t.AppendHeader(header)

	total := 0
	addRow := func(pos, kind, raw string, frag string) {
		n := countInstructions(frag)
		total += n
		row := table.Row{pos, kind, raw, n}
		if showFragments {
			row = append(row, strings.TrimRight(frag, "\n"))
		}
		t.AppendRow(row)
	}

	for _, u := range units {
		before := len(sink.Fragments())
		if err := e.BeginUnit(u.Name); err != nil {
			return "", err
		}
		if frags := sink.Fragments(); len(frags) > before {
			addRow("-", "bootstrap", codegen.EntryCall(entry).Raw, frags[len(frags)-1])
		}
		for _, cmd := range u.Commands {
			if err := e.Emit(cmd); err != nil {
				return t.Render(), err
			}
			frags := sink.Fragments()
			addRow(cmd.Position(), cmd.Kind.String(), cmd.Raw, frags[len(frags)-1])
		}
	}

	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d fragments", e.Fragments()), total})
	st := e.State()
	return fmt.Sprintf("%s\ncompares=%d bytes=%d\n", t.Render(), st.Compares(), e.Bytes()), nil
}
