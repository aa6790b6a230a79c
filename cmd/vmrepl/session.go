package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"hackvm/pkg/asm"
	"hackvm/pkg/codegen"
	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

const defaultUnit = "Repl"

// session keeps the emitter state across REPL inputs so that labels,
// call sites and statics behave as in one translated program. Fragments
// land in pending first and join program only once their input succeeded.
type session struct {
	out     io.Writer
	pending *pendingSink
	program strings.Builder
	emitter *codegen.Emitter
	unit    string
	line    int
	cycles  uint64
}

// pendingSink holds the fragments of the input being translated.
type pendingSink struct {
	fragments []string
}

func (p *pendingSink) WriteFragment(fragment string) error {
	p.fragments = append(p.fragments, fragment)
	return nil
}

func newSession(out io.Writer) (*session, error) {
	s := &session{out: out, cycles: 1_000_000}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) reset() error {
	s.pending = &pendingSink{}
	s.program.Reset()
	s.emitter = codegen.NewEmitter(s.pending, codegen.Options{})
	s.unit = defaultUnit
	s.line = 0
	return s.emitter.BeginUnit(s.unit)
}

// commit appends the pending fragments to the program and returns them.
func (s *session) commit() []string {
	frags := s.pending.fragments
	for _, frag := range frags {
		s.program.WriteString(frag)
	}
	s.pending.fragments = nil
	return frags
}

func (s *session) discard() {
	s.pending.fragments = nil
}

// translate classifies and emits one VM line, printing its fragment.
func (s *session) translate(text string) error {
	s.line++
	cmd, ok, err := vm.Classify(s.unit, s.line, text)
	if err != nil || !ok {
		return err
	}
	if err := s.emitter.Emit(cmd); err != nil {
		s.discard()
		return err
	}
	for _, frag := range s.commit() {
		fmt.Fprint(s.out, frag)
	}
	return nil
}

// load translates every command of a .vm file as a new unit. Nothing is
// kept unless the whole file translates.
func (s *session) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := utils.BaseName(path)
	cmds, err := vm.ScanAll(name, f)
	if err != nil {
		return err
	}

	prevUnit, prevLine := s.unit, s.line
	if err := s.setUnit(name); err != nil {
		s.discard()
		return err
	}
	for _, cmd := range cmds {
		if err := s.emitter.Emit(cmd); err != nil {
			s.discard()
			if rerr := s.setUnit(prevUnit); rerr != nil {
				return errors.Wrap(rerr, err.Error())
			}
			s.line = prevLine
			return err
		}
	}
	s.commit()
	fmt.Fprintf(s.out, "loaded %d commands from %s\n", len(cmds), path)
	return nil
}

func (s *session) setUnit(name string) error {
	s.unit = name
	s.line = 0
	return s.emitter.BeginUnit(name)
}

// assembly returns the program translated so far.
func (s *session) assembly() string {
	return s.program.String()
}

// run assembles the program so far and executes it on a fresh machine with
// the stack and segment pointers preset.
func (s *session) run() (*cpu.CPU, error) {
	program, _, err := asm.Assemble(s.assembly())
	if err != nil {
		return nil, errors.Wrap(err, "assemble")
	}
	machine := cpu.NewCPU()
	if err := machine.Load(program); err != nil {
		return nil, err
	}
	machine.RAM[cpu.AddrSP] = codegen.StackBase
	machine.RAM[cpu.AddrLCL] = 300
	machine.RAM[cpu.AddrARG] = 400
	machine.RAM[cpu.AddrTHIS] = 3000
	machine.RAM[cpu.AddrTHAT] = 3010

	if _, err := machine.Run(s.cycles); err != nil {
		return machine, err
	}
	return machine, nil
}

// handleCommand runs a ':' command and reports whether the REPL should exit.
func (s *session) handleCommand(line string) (exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case ":help":
		fmt.Fprint(s.out, helpText)

	case ":quit", ":exit":
		return true

	case ":reset":
		if err := s.reset(); err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		fmt.Fprintln(s.out, "translation state reset.")

	case ":unit":
		if len(fields) < 2 {
			fmt.Fprintf(s.out, "current unit: %s\n", s.unit)
			return false
		}
		if err := s.setUnit(fields[1]); err != nil {
			s.discard()
			fmt.Fprintln(s.out, err)
			return false
		}
		s.commit()

	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, "usage: :load <file.vm>")
			return false
		}
		if err := s.load(fields[1]); err != nil {
			fmt.Fprintln(s.out, err)
		}

	case ":bootstrap":
		if err := s.emitter.Bootstrap(); err != nil {
			s.discard()
			fmt.Fprintln(s.out, err)
			return false
		}
		s.commit()

	case ":asm":
		fmt.Fprint(s.out, s.assembly())

	case ":state":
		st := s.emitter.State()
		fmt.Fprintf(s.out, "unit=%s compares=%d fragments=%d bytes=%d bootstrapped=%t\n",
			st.Namespace(), st.Compares(), s.emitter.Fragments(), s.emitter.Bytes(), st.Bootstrapped())

	case ":run":
		machine, err := s.run()
		if machine != nil {
			fmt.Fprint(s.out, machine.FormatState(codegen.StackBase))
		}
		if err != nil {
			fmt.Fprintln(s.out, err)
		}

	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for help.")
	}
	return false
}

const helpText = `VM commands are translated as you type them.

  :unit [name]   show or switch the static namespace
  :load <file>   translate a .vm file as a new unit
  :bootstrap     emit the bootstrap sequence
  :asm           print the program translated so far
  :state         show translation counters
  :run           assemble and run the program, then show the machine state
  :reset         forget everything translated so far
  :quit          leave
`
