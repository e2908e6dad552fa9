package records

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"reconciler/core/reconcile"
)

// FileSource reads record sets from the local filesystem.
// Relative refs resolve against Dir; absolute refs are used as given.
type FileSource struct {
	Dir string
}

// Name implements Source.
func (f FileSource) Name() string {
	return "file"
}

// Load implements Source.
func (f FileSource) Load(_ context.Context, ref string) ([]reconcile.Record, error) {
	if ref == "" {
		return nil, ErrInvalidRef
	}
	p := ref
	if !filepath.IsAbs(p) && f.Dir != "" {
		p = filepath.Join(f.Dir, p)
	}

	file, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRecordSetNotFound, p)
		}
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer file.Close()

	recs, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return recs, nil
}
