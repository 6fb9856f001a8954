package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// writeOutput creates path, hands it to fn and closes it. A close failure is
// reported when fn succeeded, so a short write never passes silently.
func writeOutput(op, path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "%s: create output file %s", op, path)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "%s: write %s", op, path)
	}
	return eris.Wrapf(f.Close(), "%s: close %s", op, path)
}
