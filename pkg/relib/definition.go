package relib

import "gopkg.in/yaml.v3"

// tableDefinition is the wire shape of one table's declaration, as emitted
// by TableStore.GetDefinition and consumed by InitFromDefinition. The yaml
// tags let the same shape double as a hand-authored schema-definition
// document (see InitFromYAMLDefinition).
type tableDefinition struct {
	Name          string          `json:"name" yaml:"name"`
	SingleRow     bool            `json:"single_row,omitempty" yaml:"single_row,omitempty"`
	System        bool            `json:"system,omitempty" yaml:"system,omitempty"`
	PrimaryKey    []string        `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Constraints   []constraintDef `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Schema        *Schema         `json:"schema,omitempty" yaml:"schema,omitempty"`
	Defaults      map[string]any  `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Serialization Serialization   `json:"serialization" yaml:"serialization"`
}

type constraintDef struct {
	Kind         string   `json:"kind" yaml:"kind"`
	Fields       []string `json:"fields" yaml:"fields"`
	TargetTable  string   `json:"target_table,omitempty" yaml:"target_table,omitempty"`
	TargetFields []string `json:"target_fields,omitempty" yaml:"target_fields,omitempty"`
}

type storeDefinition struct {
	Tables []tableDefinition `json:"tables" yaml:"tables"`
}

// GetDefinition emits a JSON document describing every user table's
// constraints, schema, defaults, and serialization strategy, in
// declaration order — the inverse of InitFromDefinition.
func (s *TableStore) GetDefinition() ([]byte, error) {
	doc := storeDefinition{}
	for _, name := range s.order {
		t := s.tables[name]
		def := tableDefinition{
			Name:          t.name,
			SingleRow:     t.singleRow,
			System:        t.system,
			PrimaryKey:    t.pkFields,
			Schema:        t.schema,
			Defaults:      t.defaults,
			Serialization: t.serial,
		}
		for _, c := range t.constraints {
			def.Constraints = append(def.Constraints, constraintDef{
				Kind: string(c.Kind), Fields: c.Fields,
				TargetTable: c.TargetTable, TargetFields: c.TargetFields,
			})
		}
		doc.Tables = append(doc.Tables, def)
	}
	return canonicalMarshal(doc)
}

// InitFromDefinition rebuilds the store's table set from a document
// produced by GetDefinition. Declaration order is preserved so that
// foreign-key targets are always instantiated before their referrers.
func (s *TableStore) InitFromDefinition(data []byte) error {
	var doc storeDefinition
	if err := canonicalUnmarshal(data, &doc); err != nil {
		return err
	}
	return s.initFromDoc(doc)
}

// InitFromYAMLDefinition is InitFromDefinition's YAML counterpart, for
// schema definitions authored by hand rather than emitted by GetDefinition.
// The on-disk wire format read and written by the store itself is always
// JSON; YAML is accepted only at this authoring boundary.
func (s *TableStore) InitFromYAMLDefinition(data []byte) error {
	var doc storeDefinition
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	return s.initFromDoc(doc)
}

func (s *TableStore) initFromDoc(doc storeDefinition) error {
	for _, def := range doc.Tables {
		t, err := s.AddTable(def.Name, def.SingleRow)
		if err != nil {
			return err
		}
		t.SetSystem(def.System)
		t.SetSchema(def.Schema)
		t.SetDefaults(def.Defaults)
		t.SetSerialization(def.Serialization)
		for _, c := range def.Constraints {
			switch ConstraintKind(c.Kind) {
			case PrimaryKeyConstraint:
				if err := t.AddPrimaryKey(c.Fields...); err != nil {
					return err
				}
			case UniqueConstraint:
				if err := t.AddUnique(c.Fields...); err != nil {
					return err
				}
			case ForeignKeyConstraint:
				if err := t.AddForeignKey(c.Fields, c.TargetTable, c.TargetFields); err != nil {
					return err
				}
			default:
				return &TableError{Table: def.Name, Op: "init_from_definition", Msg: "unknown constraint kind " + c.Kind}
			}
		}
	}
	return nil
}
