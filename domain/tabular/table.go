// Package tabular holds flat tables whose column set is the union of the fields
// seen across rows, in first-seen order. A row missing a column exports an empty
// cell rather than failing.
package tabular

// Field is one named cell value
type Field struct {
	Key   string
	Value string
}

// Row is an ordered list of fields; order decides column order for new keys
type Row []Field

// Table accumulates rows and the union of their columns
type Table struct {
	Name    string
	columns []string
	index   map[string]int
	rows    []map[string]string
}

// NewTable creates a table whose leading columns are fixed, in the given order
func NewTable(name string, fixedColumns ...string) *Table {
	t := &Table{
		Name:  name,
		index: make(map[string]int),
	}
	for _, col := range fixedColumns {
		t.addColumn(col)
	}
	return t
}

func (t *Table) addColumn(col string) {
	if _, ok := t.index[col]; ok {
		return
	}
	t.index[col] = len(t.columns)
	t.columns = append(t.columns, col)
}

// Append adds a row, registering any column not seen before. A repeated key
// within one row keeps the last value.
func (t *Table) Append(row Row) {
	values := make(map[string]string, len(row))
	for _, f := range row {
		t.addColumn(f.Key)
		values[f.Key] = f.Value
	}
	t.rows = append(t.rows, values)
}

// Columns returns the header in output order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Records returns every row aligned to Columns, with "" for missing fields
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, values := range t.rows {
		record := make([]string, len(t.columns))
		for j, col := range t.columns {
			record[j] = values[col]
		}
		out[i] = record
	}
	return out
}

// Column returns every value of one column in row order, "" where absent
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.rows))
	for i, values := range t.rows {
		out[i] = values[name]
	}
	return out
}
