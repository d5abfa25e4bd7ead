package relib

import "context"

// scratchBackend is a private, non-shared in-memory Backend used only to
// implement DeepCopy/CheckIntegrity. It is deliberately distinct from
// package backend's "memory" scheme, which is process-wide and keyed by
// URL; this one is always fresh and never registered anywhere.
type scratchBackend struct {
	files map[string][]byte
}

func newScratchBackend() *scratchBackend {
	return &scratchBackend{files: make(map[string][]byte)}
}

func (b *scratchBackend) GetURL() string                         { return "scratch://" }
func (b *scratchBackend) StartSaving(ctx context.Context) error  { return nil }
func (b *scratchBackend) DoneSaving(ctx context.Context) error   { return nil }
func (b *scratchBackend) StartLoading(ctx context.Context) error { return nil }
func (b *scratchBackend) DoneLoading(ctx context.Context) error  { return nil }

func (b *scratchBackend) SaveData(ctx context.Context, relativePath string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	b.files[relativePath] = cp
	return nil
}

func (b *scratchBackend) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	data, ok := b.files[relativePath]
	if !ok {
		return nil, &scratchNotFound{path: relativePath}
	}
	return data, nil
}

type scratchNotFound struct{ path string }

func (e *scratchNotFound) Error() string { return "not found: " + e.path }
func (e *scratchNotFound) NotFound() bool { return true }

// DeepCopy produces an independent copy of the store by serializing it to
// a scratch in-memory backend and loading it back with every check
// enabled, matching the "serialize then deserialize" deep-copy strategy
// used throughout the store.
func (s *TableStore) DeepCopy(ctx context.Context) (*TableStore, error) {
	scratch := newScratchBackend()
	if err := s.SaveToBackend(ctx, scratch, SaveOptions{Force: true, RunIntegrityCheck: false}); err != nil {
		return nil, err
	}
	cp := NewTableStore()
	if err := cp.LoadFromBackend(ctx, scratch, DefaultLoadOptions()); err != nil {
		return nil, err
	}
	return cp, nil
}

// CopyTable produces an independent copy of a single table's rows via
// serialize→deserialize through a scratch backend, preserving the
// original's constraints, schema, defaults and serialization strategy.
func CopyTable(ctx context.Context, t *Table) (*Table, error) {
	scratch := newScratchBackend()
	if _, err := t.WriteTo(ctx, scratch); err != nil {
		return nil, err
	}
	cp := newTable(t.name, t.singleRow)
	cp.pkFields = t.pkFields
	cp.constraints = t.constraints
	cp.schema = t.schema
	cp.defaults = t.defaults
	cp.serial = t.serial
	cp.system = t.system
	cp.store = t.store
	if err := cp.ReadFrom(ctx, scratch, AllChecks()); err != nil {
		return nil, err
	}
	return cp, nil
}
