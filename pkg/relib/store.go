package relib

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	definitionPath = "#tsdef.json"
	metaTableName  = "#tsmeta"
	metaPath       = "#tsmeta.json"
)

// MetaTableInfo is one user table's entry in the metadata row: its latest
// written digest and the time it was last written. The field is literally
// named "md5" in the wire format for historical reasons, even though the
// value is the table's SHA-256 checksum (see Checksum in the data model).
type MetaTableInfo struct {
	MD5          string    `json:"md5"`
	LastModified time.Time `json:"last_modified"`
}

// Meta is the reserved single-row metadata table's shape.
type Meta struct {
	CreatedOn    time.Time                `json:"created_on"`
	LastModified time.Time                `json:"last_modified"`
	Version      int64                    `json:"version"`
	Checksum     string                   `json:"checksum"`
	Tables       map[string]MetaTableInfo `json:"tables"`
	Origin       string                   `json:"origin"`
}

// TableStore is an ordered mapping from table name to Table, plus the
// reserved metadata single-row table.
type TableStore struct {
	tables map[string]*Table
	order  []string
	meta   *Table
}

// NewTableStore constructs an empty store with its reserved metadata table
// already installed.
func NewTableStore() *TableStore {
	s := &TableStore{tables: make(map[string]*Table)}
	meta := newTable(metaTableName, true)
	meta.store = s
	meta.system = true
	s.meta = meta
	now := time.Now().UTC()
	s.meta.rows[""] = Row{
		"created_on":    now.Format(time.RFC3339),
		"last_modified": now.Format(time.RFC3339),
		"version":       int64(0),
		"checksum":      storeChecksum(nil, nil),
		"tables":        map[string]any{},
		"origin":        "",
	}
	return s
}

// AddTable declares a new table with the given name, validates the name
// against the canonical table-name grammar, and attaches it to the store.
func (s *TableStore) AddTable(name string, singleRow bool) (*Table, error) {
	if !tableNamePattern.MatchString(name) {
		return nil, &TableError{Table: name, Op: "add_table", Msg: "table name must be lowercase alphanumeric with ._- , at most 50 chars"}
	}
	if _, exists := s.tables[name]; exists {
		return nil, &TableError{Table: name, Op: "add_table", Msg: "table already declared"}
	}
	t := newTable(name, singleRow)
	t.store = s
	t.serial = Serialization{Mode: WholeTable}
	s.tables[name] = t
	s.order = append(s.order, name)
	return t, nil
}

// GetTable returns a previously declared table by name, including system
// tables.
func (s *TableStore) GetTable(name string) (*Table, error) {
	if name == metaTableName {
		return s.meta, nil
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, &TableError{Table: name, Op: "get_table", Msg: "no such table"}
	}
	return t, nil
}

// Tables returns every user-visible table (system tables excluded), in
// declaration order.
func (s *TableStore) Tables() []*Table {
	out := make([]*Table, 0, len(s.order))
	for _, name := range s.order {
		t := s.tables[name]
		if !t.system {
			out = append(out, t)
		}
	}
	return out
}

// Meta returns the reserved single-row metadata table.
func (s *TableStore) Meta() *Table { return s.meta }

// MetaSnapshot returns the current contents of the metadata row as a typed
// Meta value.
func (s *TableStore) MetaSnapshot() Meta {
	row, ok := s.meta.Single()
	if !ok {
		return Meta{Tables: map[string]MetaTableInfo{}}
	}
	return rowToMeta(row)
}

func rowToMeta(row Row) Meta {
	m := Meta{Tables: map[string]MetaTableInfo{}}
	if v, ok := row["created_on"].(string); ok {
		m.CreatedOn, _ = time.Parse(time.RFC3339, v)
	}
	if v, ok := row["last_modified"].(string); ok {
		m.LastModified, _ = time.Parse(time.RFC3339, v)
	}
	if v, ok := toFloat64(row["version"]); ok {
		m.Version = int64(v)
	}
	if v, ok := row["checksum"].(string); ok {
		m.Checksum = v
	}
	if v, ok := row["origin"].(string); ok {
		m.Origin = v
	}
	if tbls, ok := row["tables"].(map[string]any); ok {
		for name, raw := range tbls {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			info := MetaTableInfo{}
			if md5, ok := entry["md5"].(string); ok {
				info.MD5 = md5
			}
			if lm, ok := entry["last_modified"].(string); ok {
				info.LastModified, _ = time.Parse(time.RFC3339, lm)
			}
			m.Tables[name] = info
		}
	}
	return m
}

func metaToRow(m Meta) Row {
	tbls := make(map[string]any, len(m.Tables))
	for name, info := range m.Tables {
		tbls[name] = map[string]any{
			"md5":           info.MD5,
			"last_modified": info.LastModified.UTC().Format(time.RFC3339),
		}
	}
	return Row{
		"created_on":    m.CreatedOn.UTC().Format(time.RFC3339),
		"last_modified": m.LastModified.UTC().Format(time.RFC3339),
		"version":       m.Version,
		"checksum":      m.Checksum,
		"tables":        tbls,
		"origin":        m.Origin,
	}
}

// SetOrigin records the authoritative backend URL for this store in the
// metadata row.
func (s *TableStore) SetOrigin(url string) {
	m := s.MetaSnapshot()
	m.Origin = url
	s.meta.rows[""] = metaToRow(m)
}

// Checksum returns the store's current checksum, i.e. the value computed
// by the most recent RefreshMetadata call (not recomputed live); a store
// that has never been refreshed reports the checksum of an empty store.
func (s *TableStore) Checksum() string {
	return s.MetaSnapshot().Checksum
}

// computeTableDigests serializes every user table into an in-memory sink
// purely to compute its checksum, without touching any backend.
func (s *TableStore) computeTableDigests(ctx context.Context) (map[string]string, error) {
	sink := newDigestSink()
	digests := make(map[string]string, len(s.order))
	for _, name := range s.order {
		t := s.tables[name]
		if t.system {
			continue
		}
		digest, err := t.WriteTo(ctx, sink)
		if err != nil {
			return nil, err
		}
		digests[name] = digest
	}
	return digests, nil
}

func storeChecksum(order []string, digests map[string]string) string {
	h := sha256.New()
	for _, name := range order {
		d, ok := digests[name]
		if !ok {
			continue
		}
		h.Write([]byte(d))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RefreshMetadata recomputes every user table's digest and the store-level
// checksum, returning the metadata snapshot from before and after the
// refresh. If nothing changed, old equals new and no write occurs; this
// call must be idempotent, since push/pull call it to detect local
// modification. The store checksum depends only on user-table digests,
// never on the metadata table itself, so refreshing repeatedly converges.
func (s *TableStore) RefreshMetadata(ctx context.Context) (old, fresh Meta, err error) {
	old = s.MetaSnapshot()

	digests, err := s.computeTableDigests(ctx)
	if err != nil {
		return old, old, err
	}
	checksum := storeChecksum(s.userTableOrder(), digests)

	next := old
	next.Tables = make(map[string]MetaTableInfo, len(digests))
	changed := checksum != old.Checksum
	now := time.Now().UTC()
	for name, digest := range digests {
		prev, existed := old.Tables[name]
		lm := now
		if existed && prev.MD5 == digest {
			lm = prev.LastModified
		} else {
			changed = true
		}
		next.Tables[name] = MetaTableInfo{MD5: digest, LastModified: lm}
	}
	if len(next.Tables) != len(old.Tables) {
		changed = true
	}
	next.Checksum = checksum
	if changed {
		next.Version = old.Version + 1
		next.LastModified = now
		if old.CreatedOn.IsZero() {
			next.CreatedOn = now
		}
	}
	s.meta.rows[""] = metaToRow(next)
	return old, next, nil
}

func (s *TableStore) userTableOrder() []string {
	out := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if !s.tables[name].system {
			out = append(out, name)
		}
	}
	return out
}
