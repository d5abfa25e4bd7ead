package relib

import "fmt"

// TableError indicates programmer misuse of the table/store declaration
// API: a missing field, a constraint declared twice, an unknown foreign
// table. It is raised eagerly and never caught internally.
type TableError struct {
	Table string
	Op    string
	Msg   string
}

func (e *TableError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: table %q: %s", e.Op, e.Table, e.Msg)
}

// ConstraintError indicates a row violates a primary-key, unique, or
// foreign-key constraint declared on a table.
type ConstraintError struct {
	Table  string
	Kind   string // "primary_key", "unique", "foreign_key"
	Fields []string
	Msg    string
}

// Error leads with Msg verbatim (e.g. "Primary key violation") followed by
// the table name, since callers and tests match on that substring.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s in table %q, fields %v", e.Msg, e.Table, e.Fields)
}

// newConstraintError builds a ConstraintError whose Error() leads with Msg
// verbatim, which matters for callers matching on substrings like
// "Primary key violation".
func newConstraintError(table, kind, msg string, fields []string) *ConstraintError {
	return &ConstraintError{Table: table, Kind: kind, Fields: fields, Msg: msg}
}

// SchemaError indicates a row fails its table's declared JSON-schema-like
// validation rules.
type SchemaError struct {
	Table string
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema violation in table %q: %s", e.Table, e.Msg)
	}
	return fmt.Sprintf("schema violation in table %q, field %q: %s", e.Table, e.Field, e.Msg)
}
