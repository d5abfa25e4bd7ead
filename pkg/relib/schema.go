package relib

import (
	"fmt"
	"regexp"
	"time"
)

// Schema is a JSON-schema subset: type, properties, required, pattern,
// enum, format. It validates a single row (or, recursively, a nested
// object/array value) structurally; it is not a general-purpose validator.
type Schema struct {
	Type       string             `json:"type,omitempty" yaml:"type,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Pattern    string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum       []any              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Format     string             `json:"format,omitempty" yaml:"format,omitempty"`
	Items      *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
}

// Validate checks value against s, returning a *SchemaError naming table and
// the offending field path on the first violation found.
func (s *Schema) Validate(table, field string, value any) error {
	if s == nil {
		return nil
	}
	if len(s.Enum) > 0 {
		found := false
		for _, want := range s.Enum {
			if valuesEqual(want, value) {
				found = true
				break
			}
		}
		if !found {
			return &SchemaError{Table: table, Field: field, Msg: fmt.Sprintf("value %v not in enum %v", value, s.Enum)}
		}
	}
	if s.Type != "" {
		if err := validateType(table, field, s.Type, value); err != nil {
			return err
		}
	}
	switch t := value.(type) {
	case string:
		if s.Pattern != "" {
			re, err := regexp.Compile(s.Pattern)
			if err != nil {
				return &SchemaError{Table: table, Field: field, Msg: fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err)}
			}
			if !re.MatchString(t) {
				return &SchemaError{Table: table, Field: field, Msg: fmt.Sprintf("value %q does not match pattern %q", t, s.Pattern)}
			}
		}
		if s.Format != "" {
			if err := validateFormat(table, field, s.Format, t); err != nil {
				return err
			}
		}
	case map[string]any:
		if err := validateObject(table, field, s, t); err != nil {
			return err
		}
	case []any:
		if s.Items != nil {
			for i, elem := range t {
				if err := s.Items.Validate(table, fmt.Sprintf("%s[%d]", field, i), elem); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateObject(table, field string, s *Schema, obj map[string]any) error {
	for _, req := range s.Required {
		if v, ok := obj[req]; !ok || v == nil {
			return &SchemaError{Table: table, Field: joinField(field, req), Msg: "required field missing"}
		}
	}
	for name, sub := range s.Properties {
		v, ok := obj[name]
		if !ok {
			continue
		}
		if err := sub.Validate(table, joinField(field, name), v); err != nil {
			return err
		}
	}
	return nil
}

func joinField(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func validateType(table, field, want string, value any) error {
	ok := false
	switch want {
	case "string":
		_, ok = value.(string)
	case "number":
		_, ok = toFloat64(value)
	case "integer":
		f, isNum := toFloat64(value)
		ok = isNum && f == float64(int64(f))
	case "boolean":
		_, ok = value.(bool)
	case "object":
		switch value.(type) {
		case map[string]any:
			ok = true
		}
	case "array":
		_, ok = value.([]any)
	case "null":
		ok = value == nil
	default:
		// Unknown declared type: accept, rather than reject data the
		// schema author may not have anticipated.
		return nil
	}
	if !ok {
		return &SchemaError{Table: table, Field: field, Msg: fmt.Sprintf("value %v is not of type %q", value, want)}
	}
	return nil
}

func validateFormat(table, field, format, value string) error {
	switch format {
	case "date-time":
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return &SchemaError{Table: table, Field: field, Msg: fmt.Sprintf("value %q is not a valid date-time: %v", value, err)}
		}
	case "email":
		if !emailPattern.MatchString(value) {
			return &SchemaError{Table: table, Field: field, Msg: fmt.Sprintf("value %q is not a valid email", value)}
		}
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateRow validates row against s as a top-level object (required
// fields + per-property rules), even when s.Type is left unset.
func (s *Schema) ValidateRow(table string, row Row) error {
	if s == nil {
		return nil
	}
	return validateObject(table, "", s, row)
}
