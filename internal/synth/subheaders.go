package synth

import (
	"encoding/binary"

	"github.com/wilhasse/go-sas7bdat/format"
)

// Layout encodes subheader bodies for one architecture and byte order.
type Layout struct {
	Arch  format.Arch
	Order binary.ByteOrder
}

func (l Layout) bigEndian() bool { return format.IsBigEndian(l.Order) }

// PutWord writes an architecture-sized integer at off.
func (l Layout) PutWord(b []byte, off int, v uint64) {
	if l.Arch == format.Arch64 {
		l.Order.PutUint64(b[off:], v)
		return
	}
	l.Order.PutUint32(b[off:], uint32(v))
}

// Ref is a text reference into a column-text blob.
type Ref struct {
	Block  uint16
	Offset uint16
	Length uint16
}

// Text accumulates the strings of one column-text blob.
type Text struct {
	Block uint16
	buf   []byte
}

// Add appends s and returns a reference to it.
func (t *Text) Add(s string) Ref {
	r := Ref{Block: t.Block, Offset: uint16(len(t.buf)), Length: uint16(len(s))}
	t.buf = append(t.buf, s...)
	return r
}

// Bytes returns the blob.
func (t *Text) Bytes() []byte { return t.buf }

// Signature encodes sig the way the file stores it: 4 bytes in 32-bit files,
// sign-extended to 8 bytes in 64-bit files.
func (l Layout) Signature(sig format.Signature) []byte {
	b := make([]byte, l.Arch.SignatureSize())
	l.PutWord(b, 0, uint64(int64(int32(sig))))
	return b
}

// Raw returns a subheader of n bytes carrying only a signature.
func (l Layout) Raw(sig format.Signature, n int) []byte {
	b := make([]byte, n)
	copy(b, l.Signature(sig))
	return b
}

// RowSize encodes a row-size subheader.
func (l Layout) RowSize(rowLength, totalRows, pageRows uint64) []byte {
	s := l.Arch.SignatureSize()
	b := l.Raw(format.SignatureRowSize, format.RowSizeMinSignatureSlots*s)
	l.PutWord(b, format.RowSizeRowLengthSlot*s, rowLength)
	l.PutWord(b, format.RowSizeTotalRowsSlot*s, totalRows)
	l.PutWord(b, format.RowSizePageRowsSlot*s, pageRows)
	return b
}

// ColumnSize encodes a column-size subheader.
func (l Layout) ColumnSize(n uint64) []byte {
	s := l.Arch.SignatureSize()
	b := l.Raw(format.SignatureColumnSize, 3*s)
	l.PutWord(b, s, n)
	return b
}

// ColumnText encodes a column-text subheader holding blob.
func (l Layout) ColumnText(blob []byte) []byte {
	return append(l.Signature(format.SignatureColumnText), blob...)
}

func (l Layout) putRef(b []byte, off int, r Ref) {
	l.Order.PutUint16(b[off:], r.Block)
	l.Order.PutUint16(b[off+2:], r.Offset)
	l.Order.PutUint16(b[off+4:], r.Length)
}

// ColumnName encodes a column-name subheader with one entry per ref.
func (l Layout) ColumnName(refs ...Ref) []byte {
	start := l.Arch.SignatureSize() + format.ColumnEntryHeaderSize
	b := l.Raw(format.SignatureColumnName, start+len(refs)*format.TextRefSize+l.Arch.ColumnEntryTrailer())
	for i, r := range refs {
		l.putRef(b, start+i*format.TextRefSize, r)
	}
	return b
}

// Attr is one column-attrs entry.
type Attr struct {
	RowOffset  uint64
	ByteLength uint32
	Kind       uint8
}

// ColumnAttrs encodes a column-attrs subheader.
func (l Layout) ColumnAttrs(attrs ...Attr) []byte {
	w := l.Arch.WordSize()
	size := w + 8
	start := l.Arch.SignatureSize() + format.ColumnEntryHeaderSize
	b := l.Raw(format.SignatureColumnAttrs, start+len(attrs)*size+l.Arch.ColumnEntryTrailer())
	for i, a := range attrs {
		off := start + i*size
		l.PutWord(b, off, a.RowOffset)
		l.Order.PutUint32(b[off+w:], a.ByteLength)
		b[off+w+6] = a.Kind
	}
	return b
}

// ColumnFormat encodes a column-format subheader. A zero Ref means no text.
func (l Layout) ColumnFormat(fmtRef, label Ref) []byte {
	b := l.Raw(format.SignatureColumnFormat, format.ColumnFormatMinSize(l.Arch))
	l.putRef(b, format.FormatRefOffset(l.Arch), fmtRef)
	l.putRef(b, format.LabelRefOffset(l.Arch), label)
	return b
}
