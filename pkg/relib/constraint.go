package relib

// ConstraintKind identifies the category of a table constraint.
type ConstraintKind string

const (
	PrimaryKeyConstraint ConstraintKind = "primary_key"
	UniqueConstraint     ConstraintKind = "unique"
	ForeignKeyConstraint ConstraintKind = "foreign_key"
)

// Constraint is a primary key, unique, or foreign key assertion declared on
// a table. Fields holds the local field set; for a foreign key, TargetTable
// and TargetFields name the referenced table and its (possibly differently
// named, i.e. "aliased") field set, in corresponding order to Fields.
type Constraint struct {
	Kind         ConstraintKind
	Fields       []string
	TargetTable  string
	TargetFields []string
}

func (c Constraint) isSelfReference(tableName string) bool {
	return c.Kind == ForeignKeyConstraint && c.TargetTable == tableName
}
