// table_def.go - Table definition for the SQL view of a schema
package schema

import (
	"fmt"
	"strings"
)

// TableDef represents a table definition with columns and metadata
type TableDef struct {
	Name      string                // Table name
	Columns   []*ColumnDef          // All columns in order
	ColumnMap map[string]*ColumnDef // Column name to column mapping
}

// NewTableDef creates a new table definition
func NewTableDef(name string) *TableDef {
	return &TableDef{
		Name:      name,
		Columns:   make([]*ColumnDef, 0),
		ColumnMap: make(map[string]*ColumnDef),
	}
}

// TableDefFromSchema builds the SQL view of a decoded schema
func TableDefFromSchema(name string, s *Schema) (*TableDef, error) {
	td := NewTableDef(name)
	for _, col := range s.Columns {
		def, err := columnDefFor(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		if err := td.AddColumn(def); err != nil {
			return nil, err
		}
	}
	return td, nil
}

// AddColumn adds a column to the table definition
func (td *TableDef) AddColumn(col *ColumnDef) error {
	key := strings.ToLower(col.Name)
	if _, exists := td.ColumnMap[key]; exists {
		return fmt.Errorf("column %s already exists", col.Name)
	}

	col.Ordinal = len(td.Columns)
	td.Columns = append(td.Columns, col)
	td.ColumnMap[key] = col
	return nil
}

// GetColumn returns a column by name, ignoring case as SAS does
func (td *TableDef) GetColumn(name string) (*ColumnDef, bool) {
	col, exists := td.ColumnMap[strings.ToLower(name)]
	return col, exists
}

// GetColumnByOrdinal returns a column by ordinal position
func (td *TableDef) GetColumnByOrdinal(ordinal int) (*ColumnDef, error) {
	if ordinal < 0 || ordinal >= len(td.Columns) {
		return nil, fmt.Errorf("ordinal %d out of range", ordinal)
	}
	return td.Columns[ordinal], nil
}

// ColumnCount returns the total number of columns
func (td *TableDef) ColumnCount() int {
	return len(td.Columns)
}

// RowSize returns the largest number of row bytes the columns can occupy
func (td *TableDef) RowSize() int {
	n := 0
	for _, col := range td.Columns {
		n += col.StorageSize()
	}
	return n
}

// Diff lists how td differs from want, column by column. An empty result
// means the definitions agree on names, order, types and lengths.
func (td *TableDef) Diff(want *TableDef) []string {
	var out []string
	if len(td.Columns) != len(want.Columns) {
		out = append(out, fmt.Sprintf("column count: have %d, want %d", len(td.Columns), len(want.Columns)))
	}
	for i, w := range want.Columns {
		if i >= len(td.Columns) {
			out = append(out, fmt.Sprintf("column %d: missing %s", i, w.Name))
			continue
		}
		h := td.Columns[i]
		if !strings.EqualFold(h.Name, w.Name) {
			out = append(out, fmt.Sprintf("column %d: have name %s, want %s", i, h.Name, w.Name))
		}
		if h.Type != w.Type {
			out = append(out, fmt.Sprintf("column %d (%s): have type %s, want %s", i, w.Name, h.Type, w.Type))
		}
		if h.Type == TypeChar && w.Type == TypeChar && h.Length != w.Length {
			out = append(out, fmt.Sprintf("column %d (%s): have length %d, want %d", i, w.Name, h.Length, w.Length))
		}
	}
	for i := len(want.Columns); i < len(td.Columns); i++ {
		out = append(out, fmt.Sprintf("column %d: unexpected %s", i, td.Columns[i].Name))
	}
	return out
}

// String returns a string representation of the table definition
func (td *TableDef) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Table: %s\n", td.Name))
	sb.WriteString("Columns:\n")
	for _, col := range td.Columns {
		typ := string(col.Type)
		if col.Type == TypeChar {
			typ = fmt.Sprintf("%s(%d)", col.Type, col.Length)
		}
		label := ""
		if col.Comment != "" {
			label = fmt.Sprintf(" -- %s", col.Comment)
		}
		sb.WriteString(fmt.Sprintf("  %d. %s %s%s\n", col.Ordinal, col.Name, typ, label))
	}
	return sb.String()
}
