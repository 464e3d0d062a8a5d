package subheader

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-stdlog/stdlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
	"github.com/wilhasse/go-sas7bdat/header"
	"github.com/wilhasse/go-sas7bdat/internal/synth"
	"github.com/wilhasse/go-sas7bdat/page"
	"github.com/wilhasse/go-sas7bdat/schema"
)

var layouts = []struct {
	name  string
	arch  format.Arch
	order binary.ByteOrder
}{
	{"32-bit LE", format.Arch32, binary.LittleEndian},
	{"32-bit BE", format.Arch32, binary.BigEndian},
	{"64-bit LE", format.Arch64, binary.LittleEndian},
	{"64-bit BE", format.Arch64, binary.BigEndian},
}

// dispatchPage decodes the first page of f into a fresh builder.
func dispatchPage(t *testing.T, f *synth.File) (*schema.Builder, *Dispatcher, error) {
	t.Helper()
	r := bytes.NewReader(f.Bytes())
	h, err := header.Parse(r, binary.LittleEndian)
	require.NoError(t, err)

	pg, err := page.NewCursor(r, h, stdlog.Discard).Next()
	require.NoError(t, err)
	ptrs, err := page.ReadPointers(pg, h.Arch, h.Decoder)
	require.NoError(t, err)

	b := schema.NewBuilder(h.Encoding)
	d := NewDispatcher(h, b, stdlog.Discard)
	return b, d, d.Dispatch(pg, ptrs)
}

func onePage(arch format.Arch, order binary.ByteOrder, build func(l synth.Layout) []synth.Subheader) *synth.File {
	f := &synth.File{Arch: arch, Order: order, Encoding: 20}
	f.Pages = []synth.Page{{Type: format.PageTypeMeta, Subheaders: build(f.Layout())}}
	return f
}

func TestDispatchDecodesEveryKind(t *testing.T) {
	for _, lay := range layouts {
		t.Run(lay.name, func(t *testing.T) {
			text := &synth.Text{}
			height, weight := text.Add("height"), text.Add("weight ")
			best, cm := text.Add("BEST12."), text.Add("Height in cm")

			f := onePage(lay.arch, lay.order, func(l synth.Layout) []synth.Subheader {
				return []synth.Subheader{
					{Data: l.RowSize(16, 1000, 250)},
					{Data: l.ColumnSize(2)},
					{Data: l.Raw(format.SignatureCounts, 64)},
					{Data: l.ColumnText(text.Bytes())},
					{Data: l.ColumnName(height, weight)},
					{Data: l.ColumnAttrs(
						synth.Attr{RowOffset: 0, ByteLength: 8, Kind: format.ColumnKindNumeric},
						synth.Attr{RowOffset: 8, ByteLength: 8, Kind: format.ColumnKindNumeric},
					)},
					{Data: l.ColumnFormat(best, cm)},
					{Data: l.ColumnFormat(synth.Ref{}, synth.Ref{})},
					{Data: l.Raw(format.SignatureColumnList, 32)},
				}
			})
			b, d, err := dispatchPage(t, f)
			require.NoError(t, err)

			s, err := b.Finalize()
			require.NoError(t, err)
			assert.Equal(t, uint64(16), s.RowLength)
			assert.Equal(t, uint64(1000), s.TotalRowCount)
			assert.Equal(t, uint32(250), s.PageRowCount)
			require.Len(t, s.Columns, 2)
			assert.Equal(t, schema.Column{
				Index: 0, Name: "height", Kind: schema.Numeric, ByteLength: 8,
				Format: "BEST12.", Label: "Height in cm",
			}, s.Columns[0])
			assert.Equal(t, schema.Column{
				Index: 1, Name: "weight", Kind: schema.Numeric, ByteLength: 8, RowOffset: 8,
			}, s.Columns[1])

			seen := d.Seen()
			assert.Equal(t, 2, seen[format.SignatureColumnFormat])
			assert.Equal(t, 1, seen[format.SignatureCounts])
			assert.Equal(t, 1, seen[format.SignatureColumnList])
		})
	}
}

func TestDispatchUnknownSignature(t *testing.T) {
	for _, lay := range layouts {
		t.Run(lay.name, func(t *testing.T) {
			f := onePage(lay.arch, lay.order, func(l synth.Layout) []synth.Subheader {
				return []synth.Subheader{{Data: l.Raw(format.Signature(0xFFFFFA00), 32)}}
			})
			_, _, err := dispatchPage(t, f)
			require.ErrorIs(t, err, errors.UnknownSubheader)

			var pe *errors.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 0, pe.Page)
			assert.Contains(t, pe.Reason, "0xfffffa00")
		})
	}
}

func TestDispatchUnknownCompression(t *testing.T) {
	f := onePage(format.Arch32, binary.LittleEndian, func(l synth.Layout) []synth.Subheader {
		return []synth.Subheader{{Data: l.ColumnSize(1), Compression: 0x02}}
	})
	_, _, err := dispatchPage(t, f)
	require.ErrorIs(t, err, errors.UnknownCompression)
}

func TestDispatchRecordsRowCompressedBlocks(t *testing.T) {
	f := onePage(format.Arch64, binary.LittleEndian, func(l synth.Layout) []synth.Subheader {
		return []synth.Subheader{
			{Data: bytes.Repeat([]byte{0xAB}, 40), Compression: format.CompressionRow},
			{Data: l.ColumnSize(0)},
		}
	})
	b, _, err := dispatchPage(t, f)
	require.NoError(t, err)

	blocks := b.CompressedBlocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].Page)
	assert.Equal(t, uint64(40), blocks[0].Length)
	assert.Greater(t, blocks[0].Offset, f.PageOffset(0))
}

func TestDispatchBigEndianSignatureQuirk(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		data func(l synth.Layout) []byte
		want format.Signature
	}{
		// First word all ones: the signature is the second word.
		{"sign extended", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFD}, func(l synth.Layout) []byte {
			return l.ColumnText([]byte("abc"))
		}, format.SignatureColumnText},
		// Otherwise the first word is the signature.
		{"first word", []byte{0xF6, 0xF6, 0xF6, 0xF6, 0, 0, 0, 0}, func(l synth.Layout) []byte {
			data := l.ColumnSize(3)
			binary.BigEndian.PutUint32(data[0:], uint32(format.SignatureColumnSize))
			binary.BigEndian.PutUint32(data[4:], 0)
			return data
		}, format.SignatureColumnSize},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var data []byte
			f := onePage(format.Arch64, binary.BigEndian, func(l synth.Layout) []synth.Subheader {
				data = c.data(l)
				return []synth.Subheader{{Data: data}}
			})
			require.Equal(t, c.head, data[:8])

			_, d, err := dispatchPage(t, f)
			require.NoError(t, err)
			assert.Equal(t, 1, d.Seen()[c.want])
		})
	}
}

func TestDispatchColumnEntriesAtRecordedLengths(t *testing.T) {
	// Name subheaders are 2*s+12+8n bytes and attrs subheaders 2*s+12+(w+8)n,
	// as SAS writes them.
	cases := []struct {
		arch        format.Arch
		order       binary.ByteOrder
		name, attrs int
	}{
		{format.Arch32, binary.LittleEndian, 44, 56},
		{format.Arch32, binary.BigEndian, 44, 56},
		{format.Arch64, binary.LittleEndian, 52, 76},
		{format.Arch64, binary.BigEndian, 52, 76},
	}
	for _, c := range cases {
		t.Run(c.arch.String()+" "+c.order.String(), func(t *testing.T) {
			text := &synth.Text{}
			refs := []synth.Ref{text.Add("a"), text.Add("b"), text.Add("c")}
			kinds := []uint8{format.ColumnKindNumeric, format.ColumnKindNumeric, format.ColumnKindCharacter}
			lengths := []uint32{8, 8, 4}

			f := onePage(c.arch, c.order, func(l synth.Layout) []synth.Subheader {
				w := c.arch.WordSize()
				start := c.arch.SignatureSize() + 8

				names := l.Raw(format.SignatureColumnName, c.name)
				attrs := l.Raw(format.SignatureColumnAttrs, c.attrs)
				var offset uint64
				for i := range refs {
					off := start + i*8
					c.order.PutUint16(names[off:], refs[i].Block)
					c.order.PutUint16(names[off+2:], refs[i].Offset)
					c.order.PutUint16(names[off+4:], refs[i].Length)

					off = start + i*(w+8)
					l.PutWord(attrs, off, offset)
					c.order.PutUint32(attrs[off+w:], lengths[i])
					attrs[off+w+6] = kinds[i]
					offset += uint64(lengths[i])
				}
				return []synth.Subheader{
					{Data: l.RowSize(20, 5, 5)},
					{Data: l.ColumnSize(3)},
					{Data: l.ColumnText(text.Bytes())},
					{Data: names},
					{Data: attrs},
				}
			})
			b, _, err := dispatchPage(t, f)
			require.NoError(t, err)
			assert.Zero(t, b.Extra())

			s, err := b.Finalize()
			require.NoError(t, err)
			require.Len(t, s.Columns, 3)
			assert.Equal(t, "c", s.Columns[2].Name)
			assert.Equal(t, schema.Character, s.Columns[2].Kind)
			assert.Equal(t, uint32(16), s.Columns[2].RowOffset)
			assert.Equal(t, uint32(4), s.Columns[2].ByteLength)
		})
	}
}

func TestDispatchCorruptSubheaders(t *testing.T) {
	cases := []struct {
		name  string
		build func(l synth.Layout) []synth.Subheader
	}{
		{"short row size", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{{Data: l.RowSize(1, 1, 1)[:40]}}
		}},
		{"short column size", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{{Data: l.ColumnSize(1)[:8]}}
		}},
		{"short column format", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{{Data: l.ColumnFormat(synth.Ref{}, synth.Ref{})[:50]}}
		}},
		{"name without text", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{{Data: l.ColumnName(synth.Ref{Length: 1})}}
		}},
		{"name past text", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{
				{Data: l.ColumnText([]byte("ab"))},
				{Data: l.ColumnName(synth.Ref{Offset: 1, Length: 2})},
			}
		}},
		{"label in missing block", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{
				{Data: l.ColumnText([]byte("ab"))},
				{Data: l.ColumnFormat(synth.Ref{}, synth.Ref{Block: 1, Length: 1})},
			}
		}},
		{"unknown column kind", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{{Data: l.ColumnAttrs(synth.Attr{ByteLength: 8, Kind: 0x07})}}
		}},
		{"truncated column name", func(l synth.Layout) []synth.Subheader {
			return []synth.Subheader{{Data: l.Signature(format.SignatureColumnName)}}
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := onePage(format.Arch64, binary.LittleEndian, c.build)
			_, _, err := dispatchPage(t, f)
			require.ErrorIs(t, err, errors.CorruptSubheader)
		})
	}
}

func TestDispatchSignatureLongerThanSubheader(t *testing.T) {
	f := onePage(format.Arch64, binary.LittleEndian, func(l synth.Layout) []synth.Subheader {
		return []synth.Subheader{{Data: []byte{0xFD, 0xFF, 0xFF}}}
	})
	_, _, err := dispatchPage(t, f)
	require.ErrorIs(t, err, errors.CorruptSubheader)
}

func TestDispatchTextBlocksSpanPages(t *testing.T) {
	f := &synth.File{Arch: format.Arch32, Order: binary.LittleEndian, Encoding: 20}
	l := f.Layout()
	text := &synth.Text{}
	ref := text.Add("id")
	f.Pages = []synth.Page{
		{Type: format.PageTypeMeta, Subheaders: []synth.Subheader{{Data: l.ColumnText(text.Bytes())}}},
		{Type: format.PageTypeMeta, Subheaders: []synth.Subheader{{Data: l.ColumnName(ref)}}},
	}

	r := bytes.NewReader(f.Bytes())
	h, err := header.Parse(r, binary.LittleEndian)
	require.NoError(t, err)
	cur := page.NewCursor(r, h, stdlog.Discard)
	b := schema.NewBuilder(h.Encoding)
	d := NewDispatcher(h, b, stdlog.Discard)
	for i := 0; i < 2; i++ {
		pg, err := cur.Next()
		require.NoError(t, err)
		ptrs, err := page.ReadPointers(pg, h.Arch, h.Decoder)
		require.NoError(t, err)
		require.NoError(t, d.Dispatch(pg, ptrs))
	}
	require.Len(t, b.TextBlocks(), 1)
	name, err := b.Resolve(schema.TextRef{Block: 0, Offset: 0, Length: 2})
	require.NoError(t, err)
	assert.Equal(t, "id", name)
}
