package relib

import "context"

// SaveOptions controls TableStore.SaveToBackend.
type SaveOptions struct {
	// Force bypasses the integrity check that otherwise runs before any
	// byte is written.
	Force bool
	// RunIntegrityCheck runs CheckIntegrity before writing; defaults to
	// true via DefaultSaveOptions. A failing check aborts the write
	// before anything is sent to the backend.
	RunIntegrityCheck bool
}

// DefaultSaveOptions returns the spec default: full integrity check,
// not forced.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{RunIntegrityCheck: true}
}

// SaveToBackend writes the schema definition, every user table (updating
// each table's metadata entry with its fresh digest), recomputes the
// store-level checksum, then writes the metadata table last — the
// metadata file being the last byte written is load-bearing: a reader
// that observes a complete metadata file can assume every other table is
// present and consistent.
func (s *TableStore) SaveToBackend(ctx context.Context, backend Backend, opts SaveOptions) error {
	if opts.RunIntegrityCheck && !opts.Force {
		if err := s.CheckIntegrity(ctx); err != nil {
			return err
		}
	}

	if err := backend.StartSaving(ctx); err != nil {
		return err
	}

	def, err := s.GetDefinition()
	if err != nil {
		return err
	}
	if err := backend.SaveData(ctx, definitionPath, def); err != nil {
		return err
	}

	for _, name := range s.userTableOrder() {
		t := s.tables[name]
		if _, err := t.WriteTo(ctx, backend); err != nil {
			return err
		}
	}

	if _, _, err := s.RefreshMetadata(ctx); err != nil {
		return err
	}

	if _, err := s.meta.WriteTo(ctx, backend); err != nil {
		return err
	}

	return backend.DoneSaving(ctx)
}

// LoadOptions controls TableStore.LoadFromBackend.
type LoadOptions struct {
	// SkipDefinition assumes the caller already initialized the store's
	// table set (e.g. via InitFromDefinition) and only rows need to be
	// loaded.
	SkipDefinition bool
	// Checks controls constraint/schema enforcement while loading rows;
	// defaults to AllChecks() via DefaultLoadOptions. Relaxing it permits
	// loading a partially broken config for repair.
	Checks Checks
}

// DefaultLoadOptions returns the spec default: definition loaded, every
// check enabled.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Checks: AllChecks()}
}

// LoadFromBackend reads the schema definition (unless SkipDefinition),
// instantiates tables, then reads each table's rows, finishing with the
// metadata table.
func (s *TableStore) LoadFromBackend(ctx context.Context, backend Backend, opts LoadOptions) error {
	if !opts.SkipDefinition {
		def, err := backend.LoadData(ctx, definitionPath)
		if err != nil {
			return err
		}
		if err := s.InitFromDefinition(def); err != nil {
			return err
		}
	}

	if err := backend.StartLoading(ctx); err != nil {
		return err
	}

	for _, name := range s.userTableOrder() {
		if err := s.tables[name].ReadFrom(ctx, backend, opts.Checks); err != nil {
			return err
		}
	}

	if err := s.meta.ReadFrom(ctx, backend, opts.Checks); err != nil {
		return err
	}

	return backend.DoneLoading(ctx)
}

// CheckIntegrity round-trips the store through an in-memory backend with
// every check enabled; any constraint or schema failure surfaces here.
// Used before every origin write.
func (s *TableStore) CheckIntegrity(ctx context.Context) error {
	_, err := s.DeepCopy(ctx)
	return err
}

// ProbeMeta reads just the metadata file from backend, without
// instantiating a full TableStore or loading any user table. Unlike
// loading a table's rows through ReadFrom, it does not swallow
// BackendFileNotFound: that distinction is exactly what callers need to
// tell "no prior state at this backend" apart from "the metadata file
// happens to be empty".
func ProbeMeta(ctx context.Context, backend Backend) (Meta, error) {
	data, err := backend.LoadData(ctx, metaPath)
	if err != nil {
		return Meta{}, err
	}
	var row Row
	if err := canonicalUnmarshal(data, &row); err != nil {
		return Meta{}, err
	}
	return rowToMeta(row), nil
}
