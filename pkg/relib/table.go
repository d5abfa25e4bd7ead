package relib

import (
	"fmt"
	"regexp"
)

var tableNamePattern = regexp.MustCompile(`^[a-z0-9._-]{1,50}$`)

// Checks toggles which constraint categories Table.Add (and the
// round-trip load path) enforce. All five default to on; writes to a
// backend always force every flag on, reads may relax them to permit
// loading a partially broken config for repair.
type Checks struct {
	PK          bool
	FK          bool
	Unique      bool
	Schema      bool
	Constraints bool // master switch; false disables PK, FK and Unique (Schema has only its own flag)
}

// AllChecks returns a Checks with every flag enabled.
func AllChecks() Checks {
	return Checks{PK: true, FK: true, Unique: true, Schema: true, Constraints: true}
}

func (c Checks) pkEnabled() bool     { return c.Constraints && c.PK }
func (c Checks) fkEnabled() bool     { return c.Constraints && c.FK }
func (c Checks) uniqueEnabled() bool { return c.Constraints && c.Unique }
func (c Checks) schemaEnabled() bool { return c.Schema }

// Table is an ordered mapping from canonical primary key to row, with
// constraint enforcement, typed lookup, and a serialization strategy.
type Table struct {
	name        string
	pkFields    []string
	singleRow   bool
	constraints []Constraint
	schema      *Schema
	defaults    map[string]any
	serial      Serialization
	system      bool

	rows map[string]Row
	// store is a back-reference set by TableStore.AddTable, needed to
	// resolve foreign keys and references against sibling tables.
	store *TableStore
	// readOnly rejects Add/Remove/Clear while set, used by pkg/txn to mark
	// the metadata table untouchable for the duration of a transaction's
	// edit window.
	readOnly bool
}

// SetReadOnly toggles the read-only guard checked by Add, Remove, and
// Clear.
func (t *Table) SetReadOnly(readOnly bool) { t.readOnly = readOnly }

// IsReadOnly reports the current read-only guard state.
func (t *Table) IsReadOnly() bool { return t.readOnly }

func newTable(name string, singleRow bool) *Table {
	return &Table{
		name:      name,
		singleRow: singleRow,
		rows:      make(map[string]Row),
	}
}

// Name returns the table's declared name.
func (t *Table) Name() string { return t.name }

// IsSystem reports whether this table is excluded from user-visible
// enumeration (the reserved metadata table, for instance).
func (t *Table) IsSystem() bool { return t.system }

// SetSystem marks the table as system-owned.
func (t *Table) SetSystem(system bool) { t.system = system }

// SetSchema attaches a JSON-schema-like validator to the table.
func (t *Table) SetSchema(s *Schema) { t.schema = s }

// Schema returns the table's validator, or nil.
func (t *Table) Schema() *Schema { return t.schema }

// SetDefaults installs the default-values map, evaluated per-field at Add
// time. Values may be literal JSON values or the sentinel tokens
// "@@utcnow" / "@@identity".
func (t *Table) SetDefaults(defaults map[string]any) { t.defaults = defaults }

// Defaults returns the table's default-values map.
func (t *Table) Defaults() map[string]any { return t.defaults }

// SetSerialization installs the table's on-backend layout strategy.
func (t *Table) SetSerialization(s Serialization) { t.serial = s }

// Serialization returns the table's current layout strategy.
func (t *Table) Serialization() Serialization { return t.serial }

// PrimaryKeyFields returns the declared primary-key field names in order.
func (t *Table) PrimaryKeyFields() []string { return t.pkFields }

// Constraints returns the table's declared constraints.
func (t *Table) Constraints() []Constraint { return t.constraints }

// AddPrimaryKey declares the table's primary-key field set. It accepts a
// comma-separated field list, matching the source format; calling it twice
// is a programmer error and raises TableError rather than silently
// overwriting the first declaration.
func (t *Table) AddPrimaryKey(fields ...string) error {
	if t.singleRow {
		return &TableError{Table: t.name, Op: "add_primary_key", Msg: "single-row tables have no primary key"}
	}
	if len(t.pkFields) > 0 {
		return &TableError{Table: t.name, Op: "add_primary_key", Msg: "primary key already declared"}
	}
	fields = splitCommaFields(fields)
	if len(fields) == 0 {
		return &TableError{Table: t.name, Op: "add_primary_key", Msg: "primary key must have at least one field"}
	}
	t.pkFields = fields
	t.constraints = append(t.constraints, Constraint{Kind: PrimaryKeyConstraint, Fields: fields})
	return nil
}

// AddUnique declares a unique constraint over fields.
func (t *Table) AddUnique(fields ...string) error {
	fields = splitCommaFields(fields)
	if len(fields) == 0 {
		return &TableError{Table: t.name, Op: "add_unique", Msg: "unique constraint must have at least one field"}
	}
	t.constraints = append(t.constraints, Constraint{Kind: UniqueConstraint, Fields: fields})
	return nil
}

// AddForeignKey declares a foreign key from localFields to targetFields in
// targetTable. targetTable must already exist in the owning store (or be
// this table itself, for a self-reference) — this is what makes cyclic
// foreign keys across distinct tables structurally impossible, per the
// declaration-order DAG requirement.
func (t *Table) AddForeignKey(localFields []string, targetTable string, targetFields []string) error {
	if len(localFields) == 0 || len(targetFields) == 0 {
		return &TableError{Table: t.name, Op: "add_foreign_key", Msg: "foreign key requires at least one field on each side"}
	}
	if len(localFields) != len(targetFields) {
		return &TableError{Table: t.name, Op: "add_foreign_key", Msg: "foreign key local/target field counts differ"}
	}
	if targetTable != t.name {
		if t.store == nil {
			return &TableError{Table: t.name, Op: "add_foreign_key", Msg: "table not yet attached to a store"}
		}
		if _, err := t.store.GetTable(targetTable); err != nil {
			return &TableError{Table: t.name, Op: "add_foreign_key", Msg: fmt.Sprintf("unknown foreign table %q (must be declared before its referrer)", targetTable)}
		}
	}
	t.constraints = append(t.constraints, Constraint{
		Kind: ForeignKeyConstraint, Fields: localFields,
		TargetTable: targetTable, TargetFields: targetFields,
	})
	return nil
}

func splitCommaFields(fields []string) []string {
	var out []string
	for _, f := range fields {
		for _, part := range splitComma(f) {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == ',' {
			out = append(out, trimSpace(s[start:i]))
			start = i + 1
		}
	}
	out = append(out, trimSpace(s[start:]))
	return out
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}

// Add merges defaults into a copy of row, runs every constraint check in
// the stable order required for reproducible error messages, then — unless
// checkOnly — stores the merged row and returns the stored reference. The
// returned row is the live object; callers may mutate non-key fields in
// place afterward.
func (t *Table) Add(row Row, checkOnly bool) (Row, error) {
	return t.addWithChecks(row, checkOnly, AllChecks())
}

// AddWithChecks is Add with an explicit Checks set, used by the load path
// to relax validation when repairing a partially broken store.
func (t *Table) AddWithChecks(row Row, checkOnly bool, checks Checks) (Row, error) {
	return t.addWithChecks(row, checkOnly, checks)
}

func (t *Table) addWithChecks(row Row, checkOnly bool, checks Checks) (Row, error) {
	if t.readOnly && !checkOnly {
		return nil, &TableError{Table: t.name, Op: "add", Msg: "table is marked read-only"}
	}
	if t.singleRow {
		merged := resolveDefaults(row, t.defaults, func(string) int64 { return 0 })
		if checks.schemaEnabled() && t.schema != nil {
			if err := t.schema.ValidateRow(t.name, merged); err != nil {
				return nil, err
			}
		}
		if !checkOnly {
			t.rows = map[string]Row{"": merged}
		}
		return merged, nil
	}

	merged := resolveDefaults(row, t.defaults, t.maxIntValue)

	// 1. primary-key presence
	if checks.pkEnabled() {
		if !fieldsPresent(merged, t.pkFields) {
			return nil, newConstraintError(t.name, string(PrimaryKeyConstraint),
				"Primary key field missing", t.pkFields)
		}
	}

	// 2. primary-key format
	var pk string
	if len(t.pkFields) > 0 {
		var err error
		pk, err = canonicalKey(merged, t.pkFields)
		if err != nil && checks.pkEnabled() {
			return nil, newConstraintError(t.name, string(PrimaryKeyConstraint),
				"Primary key format violation: "+err.Error(), t.pkFields)
		}
	}

	// 3. unique-field presence, 4. unique-field uniqueness
	if checks.uniqueEnabled() {
		for _, c := range t.constraints {
			if c.Kind != UniqueConstraint {
				continue
			}
			if !fieldsPresent(merged, c.Fields) {
				return nil, newConstraintError(t.name, string(UniqueConstraint),
					"Unique constraint field missing", c.Fields)
			}
		}
		for _, c := range t.constraints {
			if c.Kind != UniqueConstraint {
				continue
			}
			want := fieldValues(merged, c.Fields)
			for existingPK, existing := range t.rows {
				if existingPK == pk {
					continue
				}
				if rowMatchesValues(existing, c.Fields, want) {
					return nil, newConstraintError(t.name, string(UniqueConstraint),
						"Unique constraint violation", c.Fields)
				}
			}
		}
	}

	// 5. foreign-key resolution
	if checks.fkEnabled() {
		for _, c := range t.constraints {
			if c.Kind != ForeignKeyConstraint {
				continue
			}
			if err := t.checkForeignKey(merged, c); err != nil {
				return nil, err
			}
		}
	}

	// 6. schema validation
	if checks.schemaEnabled() && t.schema != nil {
		if err := t.schema.ValidateRow(t.name, merged); err != nil {
			return nil, err
		}
	}

	// 7. primary-key duplication
	if checks.pkEnabled() {
		if _, exists := t.rows[pk]; exists {
			return nil, newConstraintError(t.name, string(PrimaryKeyConstraint),
				"Primary key violation", t.pkFields)
		}
	}

	if !checkOnly {
		t.rows[pk] = merged
	}
	return merged, nil
}

func rowMatchesValues(row Row, fields []string, values []any) bool {
	for i, f := range fields {
		rv, ok := row[f]
		if !ok {
			return false
		}
		if !valuesEqual(rv, values[i]) {
			return false
		}
	}
	return true
}

// checkForeignKey resolves one FK constraint for row, special-casing a
// self-reference during insertion: if the target table is this table and
// the FK values equal row's own values for TargetFields, it succeeds
// without a lookup (the row is not yet stored, so a normal lookup would
// otherwise fail).
func (t *Table) checkForeignKey(row Row, c Constraint) error {
	if fieldsAbsent(row, c.Fields) {
		return nil
	}
	fkValues := fieldValues(row, c.Fields)

	if c.isSelfReference(t.name) {
		targetValues := fieldValues(row, c.TargetFields)
		if valuesListEqual(fkValues, targetValues) {
			return nil
		}
		if _, ok := t.findByValues(c.TargetFields, fkValues); ok {
			return nil
		}
		return newConstraintError(t.name, string(ForeignKeyConstraint),
			"Foreign key violation", c.Fields)
	}

	target, err := t.store.GetTable(c.TargetTable)
	if err != nil {
		return newConstraintError(t.name, string(ForeignKeyConstraint),
			"Foreign key violation: unknown target table", c.Fields)
	}
	if _, ok := target.findByValues(c.TargetFields, fkValues); !ok {
		return newConstraintError(t.name, string(ForeignKeyConstraint),
			"Foreign key violation", c.Fields)
	}
	return nil
}

func valuesListEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (t *Table) findByValues(fields []string, values []any) (Row, bool) {
	for _, row := range t.rows {
		if rowMatchesValues(row, fields, values) {
			return row, true
		}
	}
	return nil, false
}

func (t *Table) maxIntValue(field string) int64 {
	var max int64
	for _, row := range t.rows {
		v, ok := row[field]
		if !ok {
			continue
		}
		f, isNum := toFloat64(v)
		if !isNum {
			continue
		}
		if int64(f) > max {
			max = int64(f)
		}
	}
	return max
}

// Get canonicalizes key from the table's declared primary-key field order
// and returns the stored row, or nil if absent.
func (t *Table) Get(key Row) (Row, bool) {
	if t.singleRow {
		row, ok := t.rows[""]
		return row, ok
	}
	pk, err := canonicalKey(key, t.pkFields)
	if err != nil {
		return nil, false
	}
	row, ok := t.rows[pk]
	return row, ok
}

// GetByPK looks a row up directly by its canonical primary key string.
func (t *Table) GetByPK(pk string) (Row, bool) {
	row, ok := t.rows[pk]
	return row, ok
}

// Single returns the one row of a single-row table.
func (t *Table) Single() (Row, bool) {
	row, ok := t.rows[""]
	return row, ok
}

// Find performs a linear scan, returning every row matching every key/value
// pair in criteria. A nil or empty criteria returns all rows.
func (t *Table) Find(criteria map[string]any) []Row {
	out := make([]Row, 0, len(t.rows))
	for _, pk := range sortedKeys(t.rows) {
		row := t.rows[pk]
		if matchesCriteria(row, criteria) {
			out = append(out, row)
		}
	}
	return out
}

func matchesCriteria(row Row, criteria map[string]any) bool {
	for k, want := range criteria {
		got, ok := row[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// Remove deletes the row identified by key. It does not cascade; callers
// should use FindReferences first to avoid leaving dangling foreign keys.
func (t *Table) Remove(key Row) {
	if t.readOnly {
		return
	}
	if t.singleRow {
		delete(t.rows, "")
		return
	}
	pk, err := canonicalKey(key, t.pkFields)
	if err != nil {
		return
	}
	delete(t.rows, pk)
}

// Clear removes every row from the table.
func (t *Table) Clear() {
	if t.readOnly {
		return
	}
	t.rows = make(map[string]Row)
}

// Count returns the number of rows in the table.
func (t *Table) Count() int { return len(t.rows) }

// GetForeignRow resolves row across one declared foreign-key edge to
// targetTable, disambiguated by fkFieldSet when the table declares more
// than one edge to the same target. Special case: if target is this table
// and the resolved key equals row itself (a self-reference made during
// insertion), it returns row.
func (t *Table) GetForeignRow(row Row, targetTable *Table, fkFieldSet []string) (Row, bool, error) {
	var chosen *Constraint
	for i := range t.constraints {
		c := &t.constraints[i]
		if c.Kind != ForeignKeyConstraint || c.TargetTable != targetTable.name {
			continue
		}
		if fkFieldSet != nil && !stringsEqual(c.Fields, fkFieldSet) {
			continue
		}
		if chosen != nil {
			return nil, false, &TableError{Table: t.name, Op: "get_foreign_row",
				Msg: fmt.Sprintf("ambiguous foreign key edge to %q; specify fkFieldSet", targetTable.name)}
		}
		chosen = c
	}
	if chosen == nil {
		return nil, false, &TableError{Table: t.name, Op: "get_foreign_row",
			Msg: fmt.Sprintf("no declared foreign key to %q", targetTable.name)}
	}
	if fieldsAbsent(row, chosen.Fields) {
		return nil, false, nil
	}
	fkValues := fieldValues(row, chosen.Fields)
	if chosen.isSelfReference(t.name) {
		targetValues := fieldValues(row, chosen.TargetFields)
		if valuesListEqual(fkValues, targetValues) {
			return row, true, nil
		}
	}
	found, ok := targetTable.findByValues(chosen.TargetFields, fkValues)
	return found, ok, nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FindReferences transitively collects every row, in any table of the
// owning store (including this one), that references row via a foreign
// key, directly or through an intermediate referrer. Used to drive a safe
// cascading delete.
func (t *Table) FindReferences(row Row) map[string][]Row {
	out := make(map[string][]Row)
	if t.store == nil {
		return out
	}
	visited := make(map[string]map[string]bool) // table -> pk -> seen
	type pending struct {
		table *Table
		row   Row
	}
	queue := []pending{{t, row}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, candidate := range t.store.tables {
			for _, c := range candidate.constraints {
				if c.Kind != ForeignKeyConstraint || c.TargetTable != cur.table.name {
					continue
				}
				targetValues := fieldValues(cur.row, c.TargetFields)
				for _, crow := range candidate.Find(nil) {
					if fieldsAbsent(crow, c.Fields) {
						continue
					}
					if !valuesListEqual(fieldValues(crow, c.Fields), targetValues) {
						continue
					}
					var crowPK string
					if len(candidate.pkFields) > 0 {
						crowPK, _ = canonicalKey(crow, candidate.pkFields)
					}
					if visited[candidate.name] == nil {
						visited[candidate.name] = make(map[string]bool)
					}
					if visited[candidate.name][crowPK] {
						continue
					}
					visited[candidate.name][crowPK] = true
					out[candidate.name] = append(out[candidate.name], crow)
					queue = append(queue, pending{candidate, crow})
				}
			}
		}
	}
	return out
}
