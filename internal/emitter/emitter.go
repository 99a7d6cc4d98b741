package emitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StdoutPath selects the stdout writer instead of a file.
const StdoutPath = "-"

// ErrExists is returned when the target file exists and Force is not set.
var ErrExists = errors.New("emitter: output file exists")

// Options controls where a rendered document goes.
type Options struct {
	Out    string    // target file; empty or "-" writes to Stdout
	Force  bool      // overwrite an existing file
	DryRun bool      // don't write, only plan
	Stdout io.Writer // used for "-"; defaults to os.Stdout
}

// Result describes the write that was performed or planned.
type Result struct {
	Path    string // absolute file path, or "-" for stdout
	Size    int
	Written bool
}

// Emit writes data to the configured destination.
func Emit(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := strings.TrimSpace(opts.Out)
	if out == "" || out == StdoutPath {
		res := &Result{Path: StdoutPath, Size: len(data)}
		if opts.DryRun {
			return res, nil
		}
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("emitter: write stdout: %w", err)
		}
		res.Written = true
		return res, nil
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolve out path: %w", err)
	}
	res := &Result{Path: abs, Size: len(data)}

	// Pre-flight so dry runs report the same conflict a real run would.
	if st, err := os.Stat(abs); err == nil {
		if st.IsDir() {
			return nil, fmt.Errorf("emitter: output path %q is a directory", abs)
		}
		if !opts.Force {
			return nil, fmt.Errorf("%w: %q (use --force to overwrite)", ErrExists, abs)
		}
	}
	if opts.DryRun {
		return res, nil
	}
	if err := writeFile(abs, data); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// atomic write via temp file + rename
	tmp := path + ".tmp-" + time.Now().Format("20060102150405")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
