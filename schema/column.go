// column.go - SQL column definitions derived from decoded columns
package schema

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrUnsupportedType = errors.New("unsupported column type")
)

// ColumnType is the SQL type a column is presented as
type ColumnType string

const (
	TypeDouble   ColumnType = "DOUBLE"
	TypeDate     ColumnType = "DATE"
	TypeDateTime ColumnType = "DATETIME"
	TypeTime     ColumnType = "TIME"
	TypeChar     ColumnType = "CHAR"
)

// SAS display formats that mark a numeric column as holding dates, datetimes
// or times. Values are stored as doubles either way.
var (
	dateFormats = map[string]bool{
		"DATE": true, "DAY": true, "DDMMYY": true, "DOWNAME": true, "JULDAY": true,
		"JULIAN": true, "MMDDYY": true, "MMYY": true, "MMYYC": true, "MMYYD": true,
		"MMYYN": true, "MMYYP": true, "MMYYS": true, "MONNAME": true, "MONTH": true,
		"MONYY": true, "QTR": true, "QTRR": true, "WEEKDATE": true, "WEEKDATX": true,
		"WEEKDAY": true, "WORDDATE": true, "WORDDATX": true, "YEAR": true,
		"YYMM": true, "YYMMDD": true, "YYMMDDN": true, "YYMON": true, "YYQ": true,
		"E8601DA": true, "B8601DA": true, "NLDATE": true,
	}
	dateTimeFormats = map[string]bool{
		"DATETIME": true, "DATEAMPM": true, "DTDATE": true, "DTMONYY": true,
		"DTWKDATX": true, "DTYEAR": true, "E8601DT": true, "B8601DT": true,
		"NLDATM": true,
	}
	timeFormats = map[string]bool{
		"TIME": true, "TIMEAMPM": true, "TOD": true, "HHMM": true, "HOUR": true,
		"MMSS": true, "E8601TM": true, "B8601TM": true, "NLTIME": true,
	}
)

// ColumnDef is a column of a TableDef
type ColumnDef struct {
	Name    string     // Column name
	Type    ColumnType // SQL data type
	Ordinal int        // Position in table (0-based)
	Length  int        // Length for CHAR
	Comment string     // Column label
}

// IsTemporal returns true for columns holding SAS dates, datetimes or times
func (c *ColumnDef) IsTemporal() bool {
	switch c.Type {
	case TypeDate, TypeDateTime, TypeTime:
		return true
	default:
		return false
	}
}

// StorageSize returns the number of row bytes the column occupies at most
func (c *ColumnDef) StorageSize() int {
	switch c.Type {
	case TypeDouble, TypeDate, TypeDateTime, TypeTime:
		return 8
	case TypeChar:
		return c.Length
	}
	return 0
}

// columnDefFor maps a decoded column to its SQL presentation
func columnDefFor(col Column) (*ColumnDef, error) {
	def := &ColumnDef{Name: col.Name, Ordinal: col.Index, Comment: col.Label}
	switch col.Kind {
	case Character:
		def.Type = TypeChar
		def.Length = int(col.ByteLength)
	case Numeric:
		def.Type = numericType(col.Format)
	default:
		return nil, ErrUnsupportedType
	}
	return def, nil
}

// numericType picks the SQL type from a SAS format name such as "DATE9." or
// "datetime"
func numericType(format string) ColumnType {
	name := strings.ToUpper(strings.TrimRight(format, "0123456789."))
	switch {
	case dateFormats[name]:
		return TypeDate
	case dateTimeFormats[name]:
		return TypeDateTime
	case timeFormats[name]:
		return TypeTime
	default:
		return TypeDouble
	}
}
