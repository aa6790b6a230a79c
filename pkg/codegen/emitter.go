package codegen

import (
	"github.com/pkg/errors"

	"hackvm/pkg/vm"
)

// Options configures an Emitter.
type Options struct {
	// Bootstrap emits the start-up sequence before the first unit.
	Bootstrap bool
	// Entry is the function called by the bootstrap. Defaults to DefaultEntry.
	Entry string
	// Comments echoes every source command as an assembly comment.
	Comments bool
}

// arity is the number of arguments each kind takes.
var arity = [...]int{
	vm.Push:       2,
	vm.Pop:        2,
	vm.Label:      1,
	vm.Goto:       1,
	vm.IfGoto:     1,
	vm.Function:   2,
	vm.Return:     0,
	vm.Call:       2,
	vm.Arithmetic: 0,
}

// Generate translates one command into an assembly fragment, advancing st.
func Generate(st *State, cmd vm.Command) (string, error) {
	if int(cmd.Kind) < 0 || int(cmd.Kind) >= len(arity) {
		return "", vm.Unrecognized(cmd, cmd.Kind.String())
	}
	if want := arity[cmd.Kind]; len(cmd.Args) != want {
		return "", vm.Invalid(cmd, "%s takes %d argument(s), got %d", cmd.Mnemonic(), want, len(cmd.Args))
	}

	switch cmd.Kind {
	case vm.Push:
		return genPush(st, cmd)
	case vm.Pop:
		return genPop(st, cmd)
	case vm.Label:
		return genLabel(st, cmd)
	case vm.Goto:
		return genGoto(st, cmd)
	case vm.IfGoto:
		return genIfGoto(st, cmd)
	case vm.Function:
		return genFunction(st, cmd)
	case vm.Return:
		return genReturn(st, cmd)
	case vm.Call:
		return genCall(st, cmd)
	case vm.Arithmetic:
		return genArithmetic(st, cmd)
	}
	return "", vm.Unrecognized(cmd, cmd.Kind.String())
}

// Emitter writes the translation of a command stream to a Sink, one
// fragment per command, in the order commands are given.
type Emitter struct {
	state     *State
	opts      Options
	sink      Sink
	fragments int
	bytes     int
}

// NewEmitter returns an Emitter writing to sink with a fresh State.
func NewEmitter(sink Sink, opts Options) *Emitter {
	if opts.Entry == "" {
		opts.Entry = DefaultEntry
	}
	return &Emitter{state: NewState(), opts: opts, sink: sink}
}

// State exposes the emitter's translation state.
func (e *Emitter) State() *State {
	return e.state
}

// Fragments reports how many fragments have been written.
func (e *Emitter) Fragments() int {
	return e.fragments
}

// Bytes reports how many bytes of assembly have been written.
func (e *Emitter) Bytes() int {
	return e.bytes
}

// BeginUnit announces the source unit whose commands follow. Static
// variables are qualified with name until the next BeginUnit. When the
// emitter was configured with Bootstrap, the first call writes the
// bootstrap sequence.
func (e *Emitter) BeginUnit(name string) error {
	if e.opts.Bootstrap && !e.state.Bootstrapped() {
		if err := e.Bootstrap(); err != nil {
			return err
		}
	}
	e.state.SetNamespace(name)
	return nil
}

// Bootstrap writes the start-up sequence. It does nothing if the sequence
// has already been written.
func (e *Emitter) Bootstrap() error {
	if e.state.Bootstrapped() {
		return nil
	}
	frag, err := genBootstrap(e.state, e.opts.Entry)
	if err != nil {
		return errors.Wrap(err, "bootstrap")
	}
	if e.opts.Comments {
		frag = "// bootstrap: SP=256, call " + e.opts.Entry + "\n" + frag
	}
	return e.write(frag)
}

// Emit translates cmd and writes its fragment.
func (e *Emitter) Emit(cmd vm.Command) error {
	frag, err := Generate(e.state, cmd)
	if err != nil {
		return err
	}
	if e.opts.Comments {
		frag = "// " + cmd.Raw + "\n" + frag
	}
	return e.write(frag)
}

func (e *Emitter) write(frag string) error {
	if err := e.sink.WriteFragment(frag); err != nil {
		return errors.Wrap(err, "write fragment")
	}
	e.fragments++
	e.bytes += len(frag)
	return nil
}
