package conformance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"hackvm/pkg/asm"
	"hackvm/pkg/codegen"
	"hackvm/pkg/cpu"
	"hackvm/pkg/translator"
	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

// DefaultCycles bounds tests that do not set cycles.
const DefaultCycles = 1_000_000

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
	Cycles     uint64
}

// Runner executes conformance tests
type Runner struct {
	// Comments echoes VM commands into the generated assembly.
	Comments bool
}

// NewRunner creates a new test runner
func NewRunner() *Runner {
	return &Runner{}
}

// Run translates, assembles and executes one test and checks its
// expectation.
func (r *Runner) Run(test LoadedTest) TestResult {
	result := TestResult{Test: test}
	if skip, reason := test.Test.IsSkipped(); skip {
		result.Skipped = true
		result.SkipReason = reason
		return result
	}

	machine, cycles, err := r.execute(test.Test)
	result.Cycles = cycles
	if err := checkExpectation(test.Test, machine, err); err != nil {
		result.Error = err
		return result
	}
	result.Passed = true
	return result
}

// RunAll runs every test in order.
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, 0, len(tests))
	for _, t := range tests {
		results = append(results, r.Run(t))
	}
	return results
}

// Program translates and assembles the units of tc.
func (r *Runner) Program(tc TestCase) (string, []uint16, error) {
	units, err := buildUnits(tc)
	if err != nil {
		return "", nil, err
	}

	sink := &codegen.BufferSink{}
	opts := translator.Options{}
	opts.Bootstrap = tc.WantsBootstrap()
	opts.Entry = tc.Entry
	opts.Comments = r.Comments
	if _, err := translator.Translate(units, sink, opts); err != nil {
		return "", nil, err
	}

	code := sink.String()
	program, _, err := asm.Assemble(code)
	if err != nil {
		return code, nil, errors.Wrap(err, "assemble")
	}
	return code, program, nil
}

func (r *Runner) execute(tc TestCase) (*cpu.CPU, uint64, error) {
	_, program, err := r.Program(tc)
	if err != nil {
		return nil, 0, err
	}

	machine := cpu.NewCPU()
	if err := machine.Load(program); err != nil {
		return nil, 0, err
	}
	for addr, v := range tc.RAM {
		if addr < 0 || addr >= cpu.RAMSize {
			return nil, 0, errors.Errorf("initial RAM address %d out of range", addr)
		}
		machine.RAM[addr] = uint16(v)
	}

	limit := tc.Cycles
	if limit == 0 {
		limit = DefaultCycles
	}
	cycles, err := machine.Run(limit)
	return machine, cycles, err
}

// buildUnits classifies the sources of tc in translation order.
func buildUnits(tc TestCase) ([]translator.Unit, error) {
	if tc.Source != "" {
		name := tc.Unit
		if name == "" {
			name = "Main"
		}
		u, err := translator.NewUnit(name, []byte(tc.Source))
		if err != nil {
			return nil, err
		}
		return []translator.Unit{u}, nil
	}

	files := make([]string, 0, len(tc.Units))
	for file := range tc.Units {
		files = append(files, file)
	}
	sort.Strings(files)

	units := make([]translator.Unit, 0, len(files))
	for _, file := range files {
		u, err := translator.NewUnit(utils.BaseName(file), []byte(tc.Units[file]))
		if err != nil {
			return nil, err
		}
		u.Path = file
		units = append(units, u)
	}
	return units, nil
}

// errorKind names the class of a run failure.
func errorKind(err error) string {
	var uerr *vm.UnrecognizedCommandError
	var verr *vm.ValidationError
	switch {
	case errors.As(err, &uerr):
		return "unrecognized"
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, cpu.ErrCycleLimit):
		return "cycle-limit"
	}
	return "error"
}

// checkExpectation checks if the run matches the expected outcome
func checkExpectation(tc TestCase, machine *cpu.CPU, runErr error) error {
	expect := tc.Expect

	if expect.Error != "" {
		if runErr == nil {
			return fmt.Errorf("expected error %s, run succeeded", expect.Error)
		}
		if errorKind(runErr) == strings.ToLower(expect.Error) || strings.Contains(runErr.Error(), expect.Error) {
			return nil
		}
		return fmt.Errorf("expected error %s, got %s: %v", expect.Error, errorKind(runErr), runErr)
	}

	if runErr != nil {
		return fmt.Errorf("unexpected error: %v", runErr)
	}
	if len(expect.RAM) == 0 {
		return fmt.Errorf("no expectation specified")
	}

	addrs := make([]int, 0, len(expect.RAM))
	for addr := range expect.RAM {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)

	var mismatches []string
	for _, addr := range addrs {
		want := uint16(expect.RAM[addr])
		got := machine.Peek(uint16(addr))
		if got != want {
			mismatches = append(mismatches, fmt.Sprintf("RAM[%d] = %d, want %d", addr, int16(got), int16(want)))
		}
	}
	if len(mismatches) > 0 {
		return errors.New(strings.Join(mismatches, "; "))
	}
	return nil
}

// SummaryStats counts results by outcome
type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ComputeStats calculates summary statistics from results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}

// FormatResults renders one row per result.
func FormatResults(results []TestResult) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"File", "Suite", "Test", "Outcome", "Cycles", "Detail"})
	for _, r := range results {
		outcome, detail := "pass", ""
		switch {
		case r.Skipped:
			outcome, detail = "skip", r.SkipReason
		case !r.Passed:
			outcome = "FAIL"
			if r.Error != nil {
				detail = r.Error.Error()
			}
		}
		t.AppendRow(table.Row{r.Test.File, r.Test.Suite.Name, r.Test.Test.Name, outcome, r.Cycles, detail})
	}
	t.AppendFooter(table.Row{"", "", "", FormatStats(ComputeStats(results))})
	return t.Render()
}
