package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase is one VM program, the machine state it starts from and the
// state it must reach.
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"` // bool or string

	// Source is a single unit, translated under the name Unit.
	Source string `yaml:"source,omitempty"`
	Unit   string `yaml:"unit,omitempty"`
	// Units maps file names to sources, translated in name order.
	Units map[string]string `yaml:"units,omitempty"`

	// Bootstrap defaults to true for Units and false for Source.
	Bootstrap *bool  `yaml:"bootstrap,omitempty"`
	Entry     string `yaml:"entry,omitempty"`

	RAM    map[int]int `yaml:"ram,omitempty"` // initial cells
	Cycles uint64      `yaml:"cycles,omitempty"`
	Expect Expectation `yaml:"expect"`
}

// Expectation defines the outcome of a test
type Expectation struct {
	RAM   map[int]int `yaml:"ram,omitempty"`   // address -> value
	Error string      `yaml:"error,omitempty"` // unrecognized, validation, cycle-limit or a message fragment
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
	case string:
		return true, v
	}
	return false, ""
}

// WantsBootstrap reports whether the program is preceded by the bootstrap.
func (tc *TestCase) WantsBootstrap() bool {
	if tc.Bootstrap != nil {
		return *tc.Bootstrap
	}
	return len(tc.Units) > 0
}
