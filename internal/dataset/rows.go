package dataset

import (
	"fmt"
	"sort"
	"strconv"
)

// FromRows builds a table from decoded JSON rows. Column kinds are inferred
// the same way ReadCSV infers them; columns named in dateColumns are parsed
// as datetimes. Column order is the sorted union of row keys; a nil or
// absent value is missing.
func FromRows(rows []map[string]any, dateColumns []string) (*Table, error) {
	if len(rows) == 0 {
		return NewTable(), nil
	}

	seen := map[string]bool{}
	var names []string
	for _, row := range rows {
		for name := range row {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	isDate := make(map[string]bool, len(dateColumns))
	for _, name := range dateColumns {
		isDate[name] = true
	}

	table := NewTable()
	for _, name := range names {
		raw := make([]string, len(rows))
		for i, row := range rows {
			cell, err := cellString(row[name])
			if err != nil {
				return nil, fmt.Errorf("rows: column %q row %d: %w", name, i, err)
			}
			raw[i] = cell
		}

		var col *Column
		if isDate[name] {
			col = parseTimeColumn(name, raw)
		} else {
			col = inferColumn(name, raw)
		}
		if err := table.AddColumn(col); err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
	}
	return table, nil
}

// cellString renders one decoded JSON value as a raw cell for inference. An
// empty string means missing.
func cellString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
