package cache

import (
	"errors"
	"fmt"

	"github.com/jdg-tools/jdg/internal/parser"
)

// Tiered layers a fast store over a persistent one. Reads try the fast
// store first and promote disk hits into it; writes go to both.
type Tiered struct {
	mem  Store
	disk Store
}

// NewTiered creates a Tiered store. If disk is nil the memory store is used
// alone.
func NewTiered(mem, disk Store) *Tiered {
	return &Tiered{mem: mem, disk: disk}
}

func (t *Tiered) Get(key string) (*parser.ClassModel, bool, error) {
	if m, ok, err := t.mem.Get(key); err != nil || ok {
		return m, ok, err
	}
	if t.disk == nil {
		return nil, false, nil
	}
	m, ok, err := t.disk.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := t.mem.Put(key, m); err != nil {
		return nil, false, fmt.Errorf("promote cached model: %w", err)
	}
	return m, true, nil
}

func (t *Tiered) Put(key string, model *parser.ClassModel) error {
	if err := t.mem.Put(key, model); err != nil {
		return err
	}
	if t.disk == nil {
		return nil
	}
	return t.disk.Put(key, model)
}

func (t *Tiered) Close() error {
	errMem := t.mem.Close()
	var errDisk error
	if t.disk != nil {
		errDisk = t.disk.Close()
	}
	return errors.Join(errMem, errDisk)
}
