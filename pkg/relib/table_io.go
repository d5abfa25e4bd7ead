package relib

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// WriteTo serializes the table to backend according to its Serialization
// strategy and returns the SHA-256 hex digest of the exact bytes written,
// in the order they were written — this is the table's checksum
// contribution to the store.
func (t *Table) WriteTo(ctx context.Context, backend Backend) (string, error) {
	h := sha256.New()
	write := func(relPath string, data []byte) error {
		h.Write(data)
		return backend.SaveData(ctx, relPath, data)
	}

	if t.singleRow {
		row, ok := t.rows[""]
		if !ok {
			row = Row{}
		}
		data, err := canonicalMarshal(row)
		if err != nil {
			return "", err
		}
		if err := write(t.serial.tableFileName(t.name), data); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	switch t.serial.Mode {
	case "", WholeTable:
		rows := make([]Row, 0, len(t.rows))
		for _, pk := range sortedKeys(t.rows) {
			rows = append(rows, t.rows[pk])
		}
		data, err := canonicalMarshal(rows)
		if err != nil {
			return "", err
		}
		if err := write(t.serial.tableFileName(t.name), data); err != nil {
			return "", err
		}

	case RowPerFile:
		keys := sortedKeys(t.rows)
		for _, pk := range keys {
			data, err := canonicalMarshal(t.rows[pk])
			if err != nil {
				return "", err
			}
			if err := write(t.serial.rowFileName(t.name, pk), data); err != nil {
				return "", err
			}
		}
		idx, err := canonicalMarshal(keys)
		if err != nil {
			return "", err
		}
		if err := write(t.serial.indexFileName(t.name), idx); err != nil {
			return "", err
		}

	case RowGrouped:
		groupLen := len(t.serial.GroupBy)
		if groupLen == 0 {
			return "", &TableError{Table: t.name, Op: "write", Msg: "row_grouped serialization requires GroupBy"}
		}
		keys := sortedKeys(t.rows)
		groups := make(map[string][]string)
		var groupOrder []string
		for _, pk := range keys {
			g := groupKeyOf(pk, groupLen)
			if _, seen := groups[g]; !seen {
				groupOrder = append(groupOrder, g)
			}
			groups[g] = append(groups[g], pk)
		}
		for _, g := range groupOrder {
			rows := make([]Row, 0, len(groups[g]))
			for _, pk := range groups[g] {
				rows = append(rows, t.rows[pk])
			}
			data, err := canonicalMarshal(rows)
			if err != nil {
				return "", err
			}
			if err := write(t.serial.groupFileName(t.name, g), data); err != nil {
				return "", err
			}
		}
		idx, err := canonicalMarshal(keys)
		if err != nil {
			return "", err
		}
		if err := write(t.serial.indexFileName(t.name), idx); err != nil {
			return "", err
		}

	default:
		return "", &TableError{Table: t.name, Op: "write", Msg: fmt.Sprintf("unknown serialization mode %q", t.serial.Mode)}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ReadFrom loads the table's rows from backend according to its
// Serialization strategy, enforcing checks along the way. It replaces any
// rows currently in the table.
func (t *Table) ReadFrom(ctx context.Context, backend Backend, checks Checks) error {
	t.rows = make(map[string]Row)

	if t.singleRow {
		data, err := backend.LoadData(ctx, t.serial.tableFileName(t.name))
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return err
		}
		var row Row
		if err := canonicalUnmarshal(data, &row); err != nil {
			return err
		}
		if _, err := t.addWithChecks(row, false, checks); err != nil {
			return err
		}
		return nil
	}

	switch t.serial.Mode {
	case "", WholeTable:
		data, err := backend.LoadData(ctx, t.serial.tableFileName(t.name))
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			return err
		}
		var rows []Row
		if err := canonicalUnmarshal(data, &rows); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := t.addWithChecks(row, false, checks); err != nil {
				return err
			}
		}

	case RowPerFile:
		keys, err := t.loadIndex(ctx, backend)
		if err != nil {
			return err
		}
		for _, pk := range keys {
			data, err := backend.LoadData(ctx, t.serial.rowFileName(t.name, pk))
			if err != nil {
				if IsNotFound(err) {
					continue
				}
				return err
			}
			var row Row
			if err := canonicalUnmarshal(data, &row); err != nil {
				return err
			}
			if _, err := t.addWithChecks(row, false, checks); err != nil {
				return err
			}
		}

	case RowGrouped:
		groupLen := len(t.serial.GroupBy)
		if groupLen == 0 {
			return &TableError{Table: t.name, Op: "read", Msg: "row_grouped serialization requires GroupBy"}
		}
		keys, err := t.loadIndex(ctx, backend)
		if err != nil {
			return err
		}
		loaded := make(map[string]bool)
		for _, pk := range keys {
			g := groupKeyOf(pk, groupLen)
			if loaded[g] {
				continue
			}
			loaded[g] = true
			data, err := backend.LoadData(ctx, t.serial.groupFileName(t.name, g))
			if err != nil {
				if IsNotFound(err) {
					continue
				}
				return err
			}
			var rows []Row
			if err := canonicalUnmarshal(data, &rows); err != nil {
				return err
			}
			for _, row := range rows {
				if _, err := t.addWithChecks(row, false, checks); err != nil {
					return err
				}
			}
		}

	default:
		return &TableError{Table: t.name, Op: "read", Msg: fmt.Sprintf("unknown serialization mode %q", t.serial.Mode)}
	}

	return nil
}

func (t *Table) loadIndex(ctx context.Context, backend Backend) ([]string, error) {
	data, err := backend.LoadData(ctx, t.serial.indexFileName(t.name))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	if err := canonicalUnmarshal(data, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}
