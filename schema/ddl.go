// ddl.go - Render a TableDef as a CREATE TABLE statement
package schema

import (
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// DDL renders td as a CREATE TABLE statement
func (td *TableDef) DDL() string {
	spec := &sqlparser.TableSpec{}
	for _, col := range td.Columns {
		ct := sqlparser.ColumnType{Type: strings.ToLower(string(col.Type))}
		if col.Type == TypeChar {
			ct.Length = sqlparser.NewIntVal([]byte(strconv.Itoa(col.Length)))
		}
		if col.Comment != "" {
			ct.Comment = sqlparser.NewStrVal([]byte(col.Comment))
		}
		spec.Columns = append(spec.Columns, &sqlparser.ColumnDefinition{
			Name: sqlparser.NewColIdent(col.Name),
			Type: ct,
		})
	}

	ddl := &sqlparser.DDL{
		Action:    sqlparser.CreateStr,
		NewName:   sqlparser.TableName{Name: sqlparser.NewTableIdent(td.Name)},
		TableSpec: spec,
	}
	return sqlparser.String(ddl)
}
