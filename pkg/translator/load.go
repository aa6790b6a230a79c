package translator

import (
	"bytes"
	"context"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"hackvm/pkg/utils"
	"hackvm/pkg/vm"
)

// Unit is one classified source file.
type Unit struct {
	// Name is the static namespace: the file's base name without extension.
	Name     string
	Path     string
	Commands []vm.Command
}

// NewUnit classifies src as the unit called name.
func NewUnit(name string, src []byte) (Unit, error) {
	cmds, err := vm.ScanAll(name, bytes.NewReader(src))
	if err != nil {
		return Unit{}, err
	}
	return Unit{Name: name, Commands: cmds}, nil
}

// Load reads and classifies every unit of p concurrently. Units come back
// in plan order. When several units fail, the error of the earliest one in
// plan order is returned.
func Load(ctx context.Context, p Plan) ([]Unit, error) {
	units := make([]Unit, len(p.Units))
	errs := make([]error, len(p.Units))

	var g errgroup.Group
	for i, path := range p.Units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				errs[i] = &IOError{Path: path, Err: err}
				return errs[i]
			}
			u, err := NewUnit(utils.BaseName(path), src)
			if err != nil {
				errs[i] = err
				return err
			}
			u.Path = path
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil && !errors.Is(e, context.Canceled) {
				return nil, e
			}
		}
		return nil, err
	}
	return units, nil
}
