package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/loomhr/loom/pkg/types"
)

// dateLayouts are the accepted raw representations for datetime columns, in
// match order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// ReadCSV decodes a comma-separated table with a header row. Column types
// are inferred from the contents: all-integer columns become integer,
// numeric columns become float, true/false columns become boolean, anything
// else stays text. Columns named in dateColumns are parsed as datetimes;
// entries that fail to parse are left missing. Empty cells are missing in
// every column.
func ReadCSV(r io.Reader, dateColumns []string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	raw := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		for i := range header {
			raw[i] = append(raw[i], record[i])
		}
	}

	isDate := make(map[string]bool, len(dateColumns))
	for _, name := range dateColumns {
		isDate[name] = true
	}

	table := NewTable()
	for i, name := range header {
		var col *Column
		if isDate[name] {
			col = parseTimeColumn(name, raw[i])
		} else {
			col = inferColumn(name, raw[i])
		}
		if err := table.AddColumn(col); err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
	}
	return table, nil
}

// WriteCSV encodes the table with a header row. Missing entries are written
// as empty cells, datetimes in YYYY-MM-DD form.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, name := range t.ColumnNames() {
			col, _ := t.Column(name)
			record[j] = formatCell(col, i)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCell(c *Column, i int) string {
	if c.IsNull(i) {
		return ""
	}
	switch c.Kind {
	case types.KindInteger:
		return strconv.FormatInt(c.Ints[i], 10)
	case types.KindFloat:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case types.KindText:
		return c.Strs[i]
	case types.KindDateTime:
		return c.Times[i].Format("2006-01-02")
	case types.KindBoolean:
		return strconv.FormatBool(c.Bools[i])
	default:
		return ""
	}
}

// parseTimeColumn parses raw cells as datetimes. Unparseable entries become
// missing rather than failing the load.
func parseTimeColumn(name string, raw []string) *Column {
	values := make([]time.Time, len(raw))
	nulls := make([]bool, len(raw))
	for i, cell := range raw {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			nulls[i] = true
			continue
		}
		ts, ok := ParseTime(cell)
		if !ok {
			nulls[i] = true
			continue
		}
		values[i] = ts
	}
	return NewTimeColumn(name, values, nulls)
}

// ParseTime parses a raw datetime cell against the accepted layouts.
func ParseTime(cell string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// inferColumn picks the narrowest kind that fits every non-empty cell.
func inferColumn(name string, raw []string) *Column {
	allInt, allFloat, allBool := true, true, true
	nonEmpty := 0
	for _, cell := range raw {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
		}
		if !isBoolCell(cell) {
			allBool = false
		}
	}

	nulls := make([]bool, len(raw))
	switch {
	case nonEmpty > 0 && allInt:
		values := make([]int64, len(raw))
		for i, cell := range raw {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				nulls[i] = true
				continue
			}
			values[i], _ = strconv.ParseInt(cell, 10, 64)
		}
		return NewIntColumn(name, values, nulls)

	case nonEmpty > 0 && allFloat:
		values := make([]float64, len(raw))
		for i, cell := range raw {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				nulls[i] = true
				continue
			}
			values[i], _ = strconv.ParseFloat(cell, 64)
		}
		return NewFloatColumn(name, values, nulls)

	case nonEmpty > 0 && allBool:
		values := make([]bool, len(raw))
		for i, cell := range raw {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				nulls[i] = true
				continue
			}
			values[i] = strings.EqualFold(cell, "true")
		}
		return NewBoolColumn(name, values, nulls)

	default:
		values := make([]string, len(raw))
		for i, cell := range raw {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				nulls[i] = true
				continue
			}
			values[i] = cell
		}
		return NewTextColumn(name, values, nulls)
	}
}

func isBoolCell(cell string) bool {
	return strings.EqualFold(cell, "true") || strings.EqualFold(cell, "false")
}
