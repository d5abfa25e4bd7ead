package relib

import "reflect"

// RowChange classifies how a single primary-keyed row differs between two
// snapshots of a table.
type RowChange string

const (
	RowAdded    RowChange = "added"
	RowRemoved  RowChange = "removed"
	RowModified RowChange = "modified"
)

// RowDiff is one row's change between two table snapshots, keyed by its
// canonical primary key.
type RowDiff struct {
	PK     string
	Change RowChange
	Before Row
	After  Row
}

// TableDiff is the ordered set of row-level changes between two versions of
// the same table. Rows with no change are omitted.
type TableDiff struct {
	Table string
	Rows  []RowDiff
}

// DiffTables compares two snapshots of what is assumed to be the same
// table (by name) and reports every added, removed, or field-level-changed
// row. Comparison is by canonical primary key, not map identity, so it is
// safe to call across a load/reload boundary.
func DiffTables(before, after *Table) TableDiff {
	d := TableDiff{Table: after.name}
	if before == nil {
		before = newTable(after.name, after.singleRow)
	}

	seen := make(map[string]bool, len(after.rows))
	for _, pk := range sortedKeys(after.rows) {
		seen[pk] = true
		afterRow := after.rows[pk]
		beforeRow, existed := before.rows[pk]
		if !existed {
			d.Rows = append(d.Rows, RowDiff{PK: pk, Change: RowAdded, After: afterRow})
			continue
		}
		if !rowsEqual(beforeRow, afterRow) {
			d.Rows = append(d.Rows, RowDiff{PK: pk, Change: RowModified, Before: beforeRow, After: afterRow})
		}
	}
	for _, pk := range sortedKeys(before.rows) {
		if seen[pk] {
			continue
		}
		d.Rows = append(d.Rows, RowDiff{PK: pk, Change: RowRemoved, Before: before.rows[pk]})
	}
	return d
}

func rowsEqual(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}

// StoreDiff is the set of per-table diffs between two store snapshots,
// plus tables declared in one snapshot but not the other.
type StoreDiff struct {
	Tables      []TableDiff
	AddedTables []string
	DroppedTables []string
}

// DiffStores compares every user table present in either store by name and
// returns the combined diff. A table declared only in after is reported
// whole as an AddedTables entry (every row RowAdded would be redundant);
// likewise for a table only in before.
func DiffStores(before, after *TableStore) StoreDiff {
	var out StoreDiff
	beforeNames := make(map[string]bool)
	if before != nil {
		for _, t := range before.Tables() {
			beforeNames[t.name] = true
		}
	}
	afterNames := make(map[string]bool)
	for _, t := range after.Tables() {
		afterNames[t.name] = true
	}

	for _, t := range after.Tables() {
		if before == nil || !beforeNames[t.name] {
			out.AddedTables = append(out.AddedTables, t.name)
			continue
		}
		bt, _ := before.GetTable(t.name)
		td := DiffTables(bt, t)
		if len(td.Rows) > 0 {
			out.Tables = append(out.Tables, td)
		}
	}
	if before != nil {
		for _, t := range before.Tables() {
			if !afterNames[t.name] {
				out.DroppedTables = append(out.DroppedTables, t.name)
			}
		}
	}
	return out
}

// Empty reports whether the diff contains no changes at all.
func (d StoreDiff) Empty() bool {
	return len(d.Tables) == 0 && len(d.AddedTables) == 0 && len(d.DroppedTables) == 0
}
