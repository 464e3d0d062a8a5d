package subheader

import (
	"math"

	"github.com/wilhasse/go-sas7bdat/format"
	"github.com/wilhasse/go-sas7bdat/schema"
)

func (d *Dispatcher) rowSize(b block) error {
	s := d.arch.SignatureSize()
	if need := format.RowSizeMinSignatureSlots * s; len(b.data) < need {
		return b.fail(0, nil, "length %d below minimum %d", len(b.data), need)
	}
	rowLength, err := d.dec.Word(b.data, format.RowSizeRowLengthSlot*s, d.arch)
	if err != nil {
		return b.fail(format.RowSizeRowLengthSlot*s, err, "read row length")
	}
	totalRows, err := d.dec.Word(b.data, format.RowSizeTotalRowsSlot*s, d.arch)
	if err != nil {
		return b.fail(format.RowSizeTotalRowsSlot*s, err, "read row count")
	}
	pageRows, err := d.dec.Word(b.data, format.RowSizePageRowsSlot*s, d.arch)
	if err != nil {
		return b.fail(format.RowSizePageRowsSlot*s, err, "read page row count")
	}
	if pageRows > math.MaxUint32 {
		return b.fail(format.RowSizePageRowsSlot*s, nil, "page row count %d overflows 32 bits", pageRows)
	}
	d.b.SetRowSize(rowLength, totalRows, uint32(pageRows))
	return nil
}

func (d *Dispatcher) columnSize(b block) error {
	s := d.arch.SignatureSize()
	if len(b.data) < 2*s {
		return b.fail(0, nil, "length %d below minimum %d", len(b.data), 2*s)
	}
	n, err := d.dec.Word(b.data, s, d.arch)
	if err != nil {
		return b.fail(s, err, "read column count")
	}
	d.b.SetColumnCount(n)
	return nil
}

func (d *Dispatcher) columnText(b block) error {
	s := d.arch.SignatureSize()
	idx := d.b.AddTextBlock(b.data[s:])
	d.log.Debug("Captured text block", "index", idx, "size", len(b.data)-s)
	return nil
}

// entries returns where the per-column entries of a column-name or
// column-attrs subheader start and how many fit before the trailer.
func (d *Dispatcher) entries(b block, size int) (int, int, error) {
	start := d.arch.SignatureSize() + format.ColumnEntryHeaderSize
	trailer := d.arch.ColumnEntryTrailer()
	if len(b.data) < start+trailer {
		return 0, 0, b.fail(0, nil, "length %d below minimum %d", len(b.data), start+trailer)
	}
	return start, (len(b.data) - start - trailer) / size, nil
}

func (d *Dispatcher) textRef(b block, off int) (schema.TextRef, error) {
	idx, err := d.dec.U16(b.data, off)
	if err != nil {
		return schema.TextRef{}, b.fail(off, err, "read text reference")
	}
	start, err := d.dec.U16(b.data, off+2)
	if err != nil {
		return schema.TextRef{}, b.fail(off+2, err, "read text reference")
	}
	length, err := d.dec.U16(b.data, off+4)
	if err != nil {
		return schema.TextRef{}, b.fail(off+4, err, "read text reference")
	}
	return schema.TextRef{Block: idx, Offset: start, Length: length}, nil
}

func (d *Dispatcher) resolve(b block, off int) (string, error) {
	ref, err := d.textRef(b, off)
	if err != nil {
		return "", err
	}
	if ref.Empty() {
		return "", nil
	}
	text, err := d.b.Resolve(ref)
	if err != nil {
		return "", b.fail(off, err, "resolve text")
	}
	return text, nil
}

func (d *Dispatcher) columnName(b block) error {
	start, n, err := d.entries(b, format.TextRefSize)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		off := start + i*format.TextRefSize
		ref, err := d.textRef(b, off)
		if err != nil {
			return err
		}
		name, err := d.b.Resolve(ref)
		if err != nil {
			return b.fail(off, err, "resolve name of entry %d", i)
		}
		d.b.AddColumnName(name)
	}
	return nil
}

func (d *Dispatcher) columnAttrs(b block) error {
	w := d.arch.WordSize()
	size := w + 8
	start, n, err := d.entries(b, size)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		off := start + i*size
		rowOffset, err := d.dec.Word(b.data, off, d.arch)
		if err != nil {
			return b.fail(off, err, "read row offset of entry %d", i)
		}
		if rowOffset > math.MaxUint32 {
			return b.fail(off, nil, "row offset %d of entry %d overflows 32 bits", rowOffset, i)
		}
		length, err := d.dec.U32(b.data, off+w)
		if err != nil {
			return b.fail(off+w, err, "read byte length of entry %d", i)
		}
		kindByte, err := d.dec.U8(b.data, off+w+6)
		if err != nil {
			return b.fail(off+w+6, err, "read kind of entry %d", i)
		}

		var kind schema.Kind
		switch kindByte {
		case format.ColumnKindNumeric:
			kind = schema.Numeric
		case format.ColumnKindCharacter:
			kind = schema.Character
		default:
			return b.fail(off+w+6, nil, "unknown column kind %#02x in entry %d", kindByte, i)
		}
		d.b.AddColumnAttrs(schema.Attrs{RowOffset: uint32(rowOffset), ByteLength: length, Kind: kind})
	}
	return nil
}

func (d *Dispatcher) columnFormat(b block) error {
	if need := format.ColumnFormatMinSize(d.arch); len(b.data) < need {
		return b.fail(0, nil, "length %d below minimum %d", len(b.data), need)
	}
	fmtText, err := d.resolve(b, format.FormatRefOffset(d.arch))
	if err != nil {
		return err
	}
	label, err := d.resolve(b, format.LabelRefOffset(d.arch))
	if err != nil {
		return err
	}
	d.b.AddColumnFormat(fmtText, label)
	return nil
}
