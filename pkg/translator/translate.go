package translator

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"hackvm/pkg/codegen"
)

// Options configures a translation run.
type Options struct {
	codegen.Options

	// Logger receives per-unit progress at debug level. Nil discards it.
	Logger *slog.Logger
	// OnTempFile is called with the path of the temporary output file as
	// soon as it exists, so callers can arrange for its removal.
	OnTempFile func(path string)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Stats summarizes a translation run.
type Stats struct {
	Units     int
	Commands  int
	Fragments int
	Bytes     int
	Compares  int
}

// Translate emits units, in order, to sink. Each unit's name becomes the
// static namespace of its commands. The first error aborts the run.
func Translate(units []Unit, sink codegen.Sink, opts Options) (Stats, error) {
	log := opts.logger()
	e := codegen.NewEmitter(sink, opts.Options)

	var stats Stats
	for _, u := range units {
		before := e.Bytes()
		if err := e.BeginUnit(u.Name); err != nil {
			return stats, err
		}
		for _, cmd := range u.Commands {
			if err := e.Emit(cmd); err != nil {
				return stats, err
			}
		}
		stats.Units++
		stats.Commands += len(u.Commands)
		log.Debug("translated unit", "unit", u.Name, "commands", len(u.Commands), "bytes", e.Bytes()-before)
	}
	// A bootstrapped program with no units still needs its entry call.
	if opts.Bootstrap && len(units) == 0 {
		if err := e.Bootstrap(); err != nil {
			return stats, err
		}
	}

	stats.Fragments = e.Fragments()
	stats.Bytes = e.Bytes()
	stats.Compares = e.State().Compares()
	return stats, nil
}

// Run loads and translates p, then writes the result to p.Output. Nothing
// is written unless the whole run succeeds; the output replaces any
// existing file atomically.
func Run(ctx context.Context, p Plan, opts Options) (Stats, error) {
	units, err := Load(ctx, p)
	if err != nil {
		return Stats{}, err
	}

	opts.Options.Bootstrap = p.Bootstrap
	var buf bytes.Buffer
	stats, err := Translate(units, codegen.NewWriterSink(&buf), opts)
	if err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if err := WriteFileAtomic(p.Output, buf.Bytes(), opts.OnTempFile); err != nil {
		return stats, err
	}
	opts.logger().Info("wrote assembly", "output", p.Output, "units", stats.Units,
		"commands", stats.Commands, "bytes", stats.Bytes)
	return stats, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place. onTemp, when non-nil, is given the temporary path.
func WriteFileAtomic(path string, data []byte, onTemp func(string)) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	tmp := f.Name()
	if onTemp != nil {
		onTemp(tmp)
	}

	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return &IOError{Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		return fail(errors.Wrap(err, "write"))
	}
	if err := f.Chmod(0o644); err != nil {
		return fail(errors.Wrap(err, "chmod"))
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &IOError{Path: path, Err: errors.Wrap(err, "close")}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &IOError{Path: path, Err: errors.Wrap(err, "rename")}
	}
	return nil
}
