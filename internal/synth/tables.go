package synth

import (
	"encoding/binary"

	"github.com/wilhasse/go-sas7bdat/format"
)

// ThreeColumns returns a file declaring numeric columns a and b and a 4-byte
// character column c, with row_length 20 and 5 rows. One metadata page holds
// the schema and is followed by a data page.
func ThreeColumns(arch format.Arch, order binary.ByteOrder) *File {
	f := &File{Arch: arch, Order: order, Encoding: 20, FileType: "DATA", Label: "three columns"}
	l := f.Layout()

	text := &Text{}
	a, b, c := text.Add("a"), text.Add("b"), text.Add("c")

	f.Pages = []Page{
		{
			Type: format.PageTypeMeta,
			Subheaders: []Subheader{
				{Data: l.RowSize(20, 5, 5)},
				{Data: l.ColumnSize(3)},
				{Data: l.ColumnText(text.Bytes())},
				{Data: l.ColumnName(a, b, c)},
				{Data: l.ColumnAttrs(
					Attr{RowOffset: 0, ByteLength: 8, Kind: format.ColumnKindNumeric},
					Attr{RowOffset: 8, ByteLength: 8, Kind: format.ColumnKindNumeric},
					Attr{RowOffset: 16, ByteLength: 4, Kind: format.ColumnKindCharacter},
				)},
			},
		},
		{Type: format.PageTypeData},
	}
	return f
}
