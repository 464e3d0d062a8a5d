// parser.go - Parse CREATE TABLE statements into a TableDef
package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// ParseTableDefFromSQL parses a CREATE TABLE statement and returns TableDef
func ParseTableDefFromSQL(sql string) (*TableDef, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parse SQL failed: %w", err)
	}

	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != sqlparser.CreateStr {
		return nil, fmt.Errorf("statement is not CREATE TABLE")
	}
	if ddl.TableSpec == nil {
		return nil, fmt.Errorf("no table spec in CREATE TABLE")
	}

	tableName := ddl.NewName.Name.String()
	if tableName == "" {
		tableName = ddl.Table.Name.String()
	}
	tableDef := NewTableDef(tableName)

	for _, col := range ddl.TableSpec.Columns {
		column, err := parseColumn(col)
		if err != nil {
			return nil, fmt.Errorf("parse column %s failed: %w", col.Name, err)
		}
		if err := tableDef.AddColumn(column); err != nil {
			return nil, err
		}
	}
	return tableDef, nil
}

// ParseTableDefFromSQLFile reads and parses CREATE TABLE from a SQL file
func ParseTableDefFromSQLFile(filename string) (*TableDef, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read SQL file failed: %w", err)
	}

	return ParseTableDefFromSQL(string(content))
}

// parseColumn converts sqlparser.ColumnDefinition to our ColumnDef type
func parseColumn(col *sqlparser.ColumnDefinition) (*ColumnDef, error) {
	column := &ColumnDef{
		Name: col.Name.String(),
	}

	column.Type = normalizeColumnType(strings.ToUpper(col.Type.Type))
	if column.Type == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, col.Type.Type)
	}

	if col.Type.Length != nil {
		length, err := strconv.Atoi(string(col.Type.Length.Val))
		if err != nil {
			return nil, fmt.Errorf("bad length %q: %w", col.Type.Length.Val, err)
		}
		column.Length = length
	}
	if col.Type.Comment != nil {
		column.Comment = string(col.Type.Comment.Val)
	}

	return column, nil
}

// normalizeColumnType maps SQL type names onto the types a schema can produce
func normalizeColumnType(name string) ColumnType {
	switch name {
	case "DOUBLE", "DOUBLE PRECISION", "REAL", "FLOAT", "DECIMAL", "NUMERIC":
		return TypeDouble
	case "DATE":
		return TypeDate
	case "DATETIME", "TIMESTAMP":
		return TypeDateTime
	case "TIME":
		return TypeTime
	case "CHAR", "CHARACTER", "VARCHAR":
		return TypeChar
	default:
		return ""
	}
}
