package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	historyFile = ".hackvm_history"
	prompt      = "vm> "
)

func main() {
	os.Exit(runREPL())
}

func runREPL() int {
	fmt.Println("hackvm REPL. Type :help for help, :quit to leave.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s, err := newSession(os.Stdout)
	if err != nil {
		fmt.Println(err)
		return 1
	}
	for _, path := range os.Args[1:] {
		if err := s.load(path); err != nil {
			fmt.Println(err)
		}
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if err != nil {
			// Ctrl+C drops the current line.
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		ln.AppendHistory(text)

		if strings.HasPrefix(text, ":") {
			if s.handleCommand(text) {
				break
			}
			continue
		}
		if err := s.translate(text); err != nil {
			fmt.Println(err)
		}
	}

	// Persist history (best-effort)
	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}
