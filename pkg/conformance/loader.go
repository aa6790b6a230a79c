package conformance

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadedTest represents a test with its source file path
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadSuites walks dir and loads every test case of every .yaml file in it.
func LoadSuites(dir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || (filepath.Ext(path) != ".yaml" && filepath.Ext(path) != ".yml") {
			return nil
		}

		tests, err := loadTestFile(path)
		if err != nil {
			return errors.Wrapf(err, "load %s", path)
		}

		relPath, _ := filepath.Rel(dir, path)
		for _, test := range tests {
			test.File = relPath
			loaded = append(loaded, test)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}

// loadTestFile parses a single YAML file and returns all test cases
func loadTestFile(path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSuite(data)
}

// ParseSuite decodes one YAML suite.
func ParseSuite(data []byte) ([]LoadedTest, error) {
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	if suite.Name == "" {
		return nil, errors.New("suite has no name")
	}

	var tests []LoadedTest
	for i, test := range suite.Tests {
		if test.Name == "" {
			return nil, errors.Errorf("test %d of suite %s has no name", i, suite.Name)
		}
		if test.Source == "" && len(test.Units) == 0 {
			return nil, errors.Errorf("test %s has neither source nor units", test.Name)
		}
		tests = append(tests, LoadedTest{
			Suite: suite,
			Test:  test,
		})
	}
	return tests, nil
}
