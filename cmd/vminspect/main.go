package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hackvm/pkg/codegen"
	"hackvm/pkg/translator"
)

func main() {
	showAsm := flag.Bool("show-asm", false, "include each command's assembly in the table")
	bootstrap := flag.String("bootstrap", "auto", "auto, on or off")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vminspect [-show-asm] [-bootstrap auto|on|off] <file.vm|dir>")
		os.Exit(2)
	}

	mode, err := translator.ParseBootstrapMode(*bootstrap)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	plan, err := translator.Discover(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "discover error:", err)
		os.Exit(1)
	}
	mode.Apply(&plan)

	fmt.Printf("Input: %s\n", plan.Input)
	for _, u := range plan.Units {
		fmt.Println(" ", u)
	}
	fmt.Println()

	units, err := translator.Load(context.Background(), plan)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load error:", err)
		os.Exit(1)
	}

	out, err := inspect(units, codegen.Options{Bootstrap: plan.Bootstrap}, *showAsm)
	fmt.Print(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		os.Exit(1)
	}
}
