package translator

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"hackvm/pkg/utils"
)

const (
	// SourceExt is the extension of VM source units.
	SourceExt = ".vm"
	// OutputExt is the extension of the generated assembly.
	OutputExt = ".asm"
)

// ErrNotSource is wrapped in an IOError when the input is neither a VM
// file nor a directory.
var ErrNotSource = errors.New("not a .vm file or a directory")

// Plan describes one translation run.
type Plan struct {
	// Input is the absolute input path.
	Input string
	// Units lists the source files in translation order.
	Units []string
	// Output is the path of the assembly file to write.
	Output string
	// Directory is set when Input is a directory.
	Directory bool
	// Bootstrap is set when the output starts with the bootstrap sequence.
	Bootstrap bool
}

// BootstrapMode overrides whether a run emits the bootstrap sequence.
type BootstrapMode int

const (
	// BootstrapAuto bootstraps directories but not single files.
	BootstrapAuto BootstrapMode = iota
	BootstrapOn
	BootstrapOff
)

// ParseBootstrapMode parses "auto", "on" or "off".
func ParseBootstrapMode(s string) (BootstrapMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return BootstrapAuto, nil
	case "on", "true", "yes":
		return BootstrapOn, nil
	case "off", "false", "no":
		return BootstrapOff, nil
	}
	return BootstrapAuto, errors.Errorf("invalid bootstrap mode %q (want auto, on or off)", s)
}

func (m BootstrapMode) String() string {
	switch m {
	case BootstrapOn:
		return "on"
	case BootstrapOff:
		return "off"
	}
	return "auto"
}

// Apply sets p.Bootstrap according to m.
func (m BootstrapMode) Apply(p *Plan) {
	switch m {
	case BootstrapOn:
		p.Bootstrap = true
	case BootstrapOff:
		p.Bootstrap = false
	default:
		p.Bootstrap = p.Directory
	}
}

// Discover inspects path and plans its translation. A .vm file is a single
// unit written to the same path with an .asm extension. A directory
// contributes every .vm file directly inside it, in alphabetical order,
// and is written to <dir>/<dir>.asm with a bootstrap.
func Discover(path string) (Plan, error) {
	full, _, err := utils.GetPathInfo(path)
	if err != nil {
		return Plan{}, &IOError{Path: path, Err: err}
	}
	info, err := os.Stat(full)
	if err != nil {
		return Plan{}, &IOError{Path: path, Err: err}
	}

	if info.Mode().IsRegular() {
		if filepath.Ext(full) != SourceExt {
			return Plan{}, &IOError{Path: path, Err: ErrNotSource}
		}
		return Plan{
			Input:  full,
			Units:  []string{full},
			Output: utils.ReplaceExt(full, OutputExt),
		}, nil
	}
	if !info.IsDir() {
		return Plan{}, &IOError{Path: path, Err: ErrNotSource}
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return Plan{}, &IOError{Path: path, Err: err}
	}
	var units []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != SourceExt {
			continue
		}
		units = append(units, filepath.Join(full, entry.Name()))
	}
	if len(units) == 0 {
		return Plan{}, &IOError{Path: path, Err: errors.New("directory holds no .vm files")}
	}
	sort.Strings(units)

	return Plan{
		Input:     full,
		Units:     units,
		Output:    filepath.Join(full, filepath.Base(full)+OutputExt),
		Directory: true,
		Bootstrap: true,
	}, nil
}
