// Package file implements cart slots as JSON files on local disk, one file
// per cart under a spool directory.
package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/cart"
)

// SlotFactory creates file slots under dir. Files are named
// <namespace>-<cartID>.json.
type SlotFactory struct {
	dir string
}

var _ cart.SlotFactory = (*SlotFactory)(nil)

// NewSlotFactory returns a SlotFactory rooted at dir, creating it if needed.
func NewSlotFactory(dir string) (*SlotFactory, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create cart spool dir")
	}
	return &SlotFactory{dir: dir}, nil
}

// Slot returns the slot for a cart ID.
func (f *SlotFactory) Slot(cartID string) cart.Slot {
	return &Slot{path: filepath.Join(f.dir, cart.Namespace+"-"+cartID+".json")}
}

// Slot is a single file-backed storage slot. Saves are atomic: the payload
// is written to a temp file and renamed into place.
type Slot struct {
	path string
}

// NewSlot returns a Slot at the given path.
func NewSlot(path string) *Slot {
	return &Slot{path: path}
}

// Load returns the slot contents, or (nil, nil) when the file does not exist.
func (s *Slot) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read slot %s", s.path)
	}
	return data, nil
}

// Save atomically replaces the slot contents.
func (s *Slot) Save(_ context.Context, data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write slot %s", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "replace slot %s", s.path)
	}
	return nil
}
