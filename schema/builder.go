// builder.go - Accumulates schema fragments across pages
package schema

import (
	"errors"
	"fmt"

	saserrors "github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
)

// ErrBadTextRef is returned when a text reference does not resolve.
var ErrBadTextRef = errors.New("unresolvable text reference")

// TextBlock is the raw text captured from one column-text subheader.
type TextBlock struct {
	Index int
	Data  []byte
}

// TextRef points into a TextBlock.
type TextRef struct {
	Block  uint16
	Offset uint16
	Length uint16
}

// Empty reports a reference to no text.
func (r TextRef) Empty() bool { return r.Length == 0 }

// Attrs is the row placement of a column.
type Attrs struct {
	RowOffset  uint32
	ByteLength uint32
	Kind       Kind
}

type partial struct {
	name     string
	hasName  bool
	attrs    Attrs
	hasAttrs bool
	format   string
	label    string
}

// Builder collects text blocks and per-column fragments in arrival order.
// Column fragments of each kind fill slots 0, 1, 2, ... across subheaders.
type Builder struct {
	enc    format.TextEncoding
	blocks []TextBlock
	cols   []partial

	names, attrs, formats int

	hasRowSize    bool
	rowLength     uint64
	totalRows     uint64
	pageRows      uint32
	hasColumnSize bool
	columnCount   uint64

	compressed []CompressedBlock
}

func NewBuilder(enc format.TextEncoding) *Builder {
	return &Builder{enc: enc}
}

// AddTextBlock stores a copy of data and returns its index.
func (b *Builder) AddTextBlock(data []byte) int {
	blk := TextBlock{Index: len(b.blocks), Data: append([]byte(nil), data...)}
	b.blocks = append(b.blocks, blk)
	return blk.Index
}

// TextBlocks returns the blocks captured so far.
func (b *Builder) TextBlocks() []TextBlock { return b.blocks }

// Resolve returns the text ref points at, decoded and trimmed.
func (b *Builder) Resolve(ref TextRef) (string, error) {
	if int(ref.Block) >= len(b.blocks) {
		return "", fmt.Errorf("%w: block %d of %d", ErrBadTextRef, ref.Block, len(b.blocks))
	}
	data := b.blocks[ref.Block].Data
	end := int(ref.Offset) + int(ref.Length)
	if end > len(data) {
		return "", fmt.Errorf("%w: bytes [%d, %d) of block %d (%d bytes)", ErrBadTextRef, ref.Offset, end, ref.Block, len(data))
	}
	return b.enc.Decode(data[ref.Offset:end]), nil
}

func (b *Builder) SetRowSize(rowLength, totalRows uint64, pageRows uint32) {
	b.hasRowSize = true
	b.rowLength = rowLength
	b.totalRows = totalRows
	b.pageRows = pageRows
}

func (b *Builder) SetColumnCount(n uint64) {
	b.hasColumnSize = true
	b.columnCount = n
}

func (b *Builder) slot(i int) *partial {
	for len(b.cols) <= i {
		b.cols = append(b.cols, partial{})
	}
	return &b.cols[i]
}

// AddColumnName names the next unnamed column and returns its index.
func (b *Builder) AddColumnName(name string) int {
	i := b.names
	b.names++
	p := b.slot(i)
	p.name, p.hasName = name, true
	return i
}

// AddColumnAttrs places the next column and returns its index.
func (b *Builder) AddColumnAttrs(a Attrs) int {
	i := b.attrs
	b.attrs++
	p := b.slot(i)
	p.attrs, p.hasAttrs = a, true
	return i
}

// AddColumnFormat attaches format and label to the next column.
func (b *Builder) AddColumnFormat(format, label string) int {
	i := b.formats
	b.formats++
	p := b.slot(i)
	p.format, p.label = format, label
	return i
}

// AddCompressedBlock records a row-compressed block for the row decoder.
func (b *Builder) AddCompressedBlock(cb CompressedBlock) {
	b.compressed = append(b.compressed, cb)
}

func (b *Builder) CompressedBlocks() []CompressedBlock { return b.compressed }

// Finalize checks that every declared column is complete and returns the
// schema. Fragments past the declared column count are ignored.
func (b *Builder) Finalize() (*Schema, error) {
	if !b.hasRowSize {
		return nil, incomplete("no row-size subheader found")
	}
	if !b.hasColumnSize {
		return nil, incomplete("no column-size subheader found")
	}
	if b.columnCount > uint64(len(b.cols)) {
		return nil, incomplete(fmt.Sprintf("%d columns declared, fragments found for %d", b.columnCount, len(b.cols)))
	}

	s := &Schema{
		RowLength:     b.rowLength,
		TotalRowCount: b.totalRows,
		PageRowCount:  b.pageRows,
		Columns:       make([]Column, 0, b.columnCount),
	}
	for i := 0; i < int(b.columnCount); i++ {
		p := b.cols[i]
		switch {
		case !p.hasName:
			return nil, incomplete(fmt.Sprintf("column %d has no name", i))
		case !p.hasAttrs:
			return nil, incomplete(fmt.Sprintf("column %d (%s) has no attributes", i, p.name))
		}
		s.Columns = append(s.Columns, Column{
			Index:      i,
			Name:       p.name,
			Kind:       p.attrs.Kind,
			ByteLength: p.attrs.ByteLength,
			RowOffset:  p.attrs.RowOffset,
			Format:     p.format,
			Label:      p.label,
		})
	}
	return s, nil
}

// Extra reports how many column slots lie past the declared column count.
func (b *Builder) Extra() int {
	if uint64(len(b.cols)) <= b.columnCount {
		return 0
	}
	return len(b.cols) - int(b.columnCount)
}

func incomplete(reason string) error {
	return &saserrors.ParseError{Kind: saserrors.IncompleteSchema, Page: saserrors.NoPage, Offset: -1, Reason: reason}
}
