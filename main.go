//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/tebeka/atexit"

	"hackvm/pkg/asm"
	"hackvm/pkg/codegen"
	"hackvm/pkg/cpu"
	"hackvm/pkg/translator"
	"hackvm/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input .vm file or directory of .vm files")
	outPath := flag.String("out", "", "output assembly path (default: X.vm -> X.asm, dir -> dir/dir.asm)")
	bootstrap := flag.String("bootstrap", "auto", "emit the bootstrap sequence: auto (directories only), on or off")
	entry := flag.String("entry", codegen.DefaultEntry, "function called by the bootstrap sequence")
	comments := flag.Bool("comments", true, "echo every VM command as an assembly comment")
	writeHack := flag.Bool("hack", false, "also assemble the output into a .hack file")
	runProgram := flag.Bool("run", false, "assemble the output and run it on the reference CPU")
	cycles := flag.Uint64("cycles", 10_000_000, "cycle limit for -run (0 for none)")
	verbose := flag.Bool("v", false, "log per-unit progress")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *inPath == "" {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "nothing to do: provide -in <file.vm|dir>")
			flag.Usage()
			atexit.Exit(2)
		}
		*inPath = flag.Arg(0)
	}

	mode, err := translator.ParseBootstrapMode(*bootstrap)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(2)
	}

	plan, err := translator.Discover(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot translate %q: %v\n", *inPath, err)
		atexit.Exit(1)
	}
	mode.Apply(&plan)
	if *outPath != "" {
		plan.Output = *outPath
	}

	opts := translator.Options{
		Logger: log,
		OnTempFile: func(path string) {
			atexit.Register(func() { os.Remove(path) })
		},
	}
	opts.Entry = *entry
	opts.Comments = *comments

	log.Debug("translating", "input", plan.Input, "units", len(plan.Units), "bootstrap", plan.Bootstrap)
	if _, err := translator.Run(context.Background(), plan, opts); err != nil {
		fmt.Fprintf(os.Stderr, "translation failed: %v\n", err)
		atexit.Exit(1)
	}

	if !*writeHack && !*runProgram {
		atexit.Exit(0)
	}

	program, err := assemble(plan.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
		atexit.Exit(1)
	}

	if *writeHack {
		hackPath := utils.ReplaceExt(plan.Output, ".hack")
		if err := translator.WriteFileAtomic(hackPath, []byte(asm.FormatHack(program)), nil); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", hackPath, err)
			atexit.Exit(1)
		}
		log.Info("assembled", "words", len(program), "output", hackPath)
	}

	if *runProgram {
		if err := run(program, *cycles); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			atexit.Exit(1)
		}
	}
	atexit.Exit(0)
}

func assemble(path string) ([]uint16, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	program, _, err := asm.Assemble(string(source))
	return program, err
}

func run(program []uint16, maxCycles uint64) error {
	machine := cpu.NewCPU()
	if err := machine.Load(program); err != nil {
		return err
	}

	n, err := machine.Run(maxCycles)
	fmt.Printf("run complete: %d cycles, halted=%t\n", n, machine.Halted)
	fmt.Print(machine.FormatState(codegen.StackBase))
	if errors.Is(err, cpu.ErrCycleLimit) {
		return errors.Wrapf(err, "after %d cycles", n)
	}
	return err
}
