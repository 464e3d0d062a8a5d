package page

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/go-stdlog/stdlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
	"github.com/wilhasse/go-sas7bdat/header"
	"github.com/wilhasse/go-sas7bdat/internal/synth"
)

func open(t *testing.T, f *synth.File) (*header.Header, *Cursor) {
	t.Helper()
	r := bytes.NewReader(f.Bytes())
	h, err := header.Parse(r, binary.LittleEndian)
	require.NoError(t, err)
	return h, NewCursor(r, h, stdlog.Discard)
}

func firstPage(t *testing.T, f *synth.File) (*header.Header, *Page) {
	t.Helper()
	h, cur := open(t, f)
	pg, err := cur.Next()
	require.NoError(t, err)
	return h, pg
}

func TestCursorStopsAtDataPage(t *testing.T) {
	f := &synth.File{
		Arch:      format.Arch64,
		Order:     binary.BigEndian,
		PageCount: synth.Uint64(4),
		Pages: []synth.Page{
			{Type: format.PageTypeMeta},
			{Type: format.PageTypeMix},
			{Type: format.PageTypeData},
			{Type: format.PageTypeMeta},
		},
	}
	_, cur := open(t, f)

	pg, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, pg.Index)
	assert.Equal(t, format.PageTypeMeta, pg.Kind())

	pg, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, pg.Index)
	assert.Equal(t, f.PageOffset(1), pg.Offset)

	_, err = cur.Next()
	assert.Equal(t, io.EOF, err)
	_, err = cur.Next()
	assert.Equal(t, io.EOF, err)

	assert.Equal(t, Summary{PagesScanned: 2, PagesSkipped: 0, StoppedAt: 2}, cur.Summary())
}

func TestCursorSkipsCompressedPages(t *testing.T) {
	f := &synth.File{
		Arch:  format.Arch32,
		Order: binary.LittleEndian,
		Pages: []synth.Page{
			{Type: format.PageFlagComp},
			{Type: format.PageTypeMeta | format.PageFlagMeta2},
		},
	}
	_, cur := open(t, f)

	pg, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, pg.Index)
	assert.True(t, pg.Meta2())
	assert.False(t, pg.Comp())

	_, err = cur.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, Summary{PagesScanned: 1, PagesSkipped: 1, StoppedAt: -1}, cur.Summary())
}

func TestCursorTruncatedPage(t *testing.T) {
	f := &synth.File{Arch: format.Arch32, Order: binary.LittleEndian, Pages: []synth.Page{{Type: format.PageTypeMeta}}}
	data := f.Bytes()
	data = data[:len(data)-100]

	r := bytes.NewReader(data)
	h, err := header.Parse(r, binary.LittleEndian)
	require.NoError(t, err)
	_, err = NewCursor(r, h, stdlog.Discard).Next()
	require.ErrorIs(t, err, errors.IO)
}

func TestReadPointers(t *testing.T) {
	for _, arch := range []format.Arch{format.Arch32, format.Arch64} {
		t.Run(arch.String(), func(t *testing.T) {
			f := &synth.File{Arch: arch, Order: binary.LittleEndian}
			l := f.Layout()
			f.Pages = []synth.Page{{
				Type: format.PageTypeMeta,
				Subheaders: []synth.Subheader{
					{Data: l.ColumnSize(2), Type: 1},
					{},
					{Data: l.ColumnSize(1), Compression: format.CompressionTruncated},
					{Data: make([]byte, 16), Compression: format.CompressionRow},
				},
			}}
			h, pg := firstPage(t, f)

			ptrs, err := ReadPointers(pg, h.Arch, h.Decoder)
			require.NoError(t, err)
			require.Len(t, ptrs, 4)

			dirEnd := uint64(arch.PageHeaderSize() + 4*arch.PointerSize())
			assert.GreaterOrEqual(t, ptrs[0].Offset, dirEnd)
			assert.Equal(t, uint64(3*arch.SignatureSize()), ptrs[0].Length)
			assert.Equal(t, uint8(1), ptrs[0].Type)
			assert.False(t, ptrs[0].Empty())
			assert.True(t, ptrs[1].Empty())
			assert.True(t, ptrs[2].Empty())
			assert.Equal(t, format.CompressionRow, ptrs[3].Compression)
			assert.Equal(t, 3, ptrs[3].Index)
		})
	}
}

func TestReadPointersRejectsOutOfPage(t *testing.T) {
	cases := []struct {
		name   string
		offset uint64
		length uint64
	}{
		{"end past page", 4000, 200},
		{"offset past page", 5000, 8},
		{"length past page", 64, 5000},
		{"offset wraps", 64, ^uint64(0) - 10},
		{"overlaps directory", 8, 16},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := &synth.File{
				Arch:  format.Arch64,
				Order: binary.LittleEndian,
				Pages: []synth.Page{{
					Type: format.PageTypeMeta,
					Subheaders: []synth.Subheader{
						{Data: []byte{1}, Offset: synth.Uint64(c.offset), Length: synth.Uint64(c.length)},
					},
				}},
			}
			h, pg := firstPage(t, f)
			_, err := ReadPointers(pg, h.Arch, h.Decoder)
			require.ErrorIs(t, err, errors.CorruptPointer)

			var pe *errors.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 0, pe.Page)
			assert.Equal(t, f.PageOffset(0)+int64(format.Arch64.PageHeaderSize()), pe.Offset)
		})
	}
}

func TestReadPointersSkipsEmptyWithoutValidation(t *testing.T) {
	f := &synth.File{
		Arch:  format.Arch32,
		Order: binary.BigEndian,
		Pages: []synth.Page{{
			Type: format.PageTypeMeta,
			Subheaders: []synth.Subheader{
				{Offset: synth.Uint64(1 << 20), Length: synth.Uint64(0)},
				{Data: []byte{1}, Offset: synth.Uint64(1 << 20), Length: synth.Uint64(1 << 20), Compression: format.CompressionTruncated},
			},
		}},
	}
	h, pg := firstPage(t, f)
	ptrs, err := ReadPointers(pg, h.Arch, h.Decoder)
	require.NoError(t, err)
	for _, p := range ptrs {
		assert.True(t, p.Empty())
	}
}

func TestReadPointersDirectoryPastPage(t *testing.T) {
	f := &synth.File{Arch: format.Arch32, Order: binary.LittleEndian, PageSize: 1024}
	fill := make([]byte, 1024)
	binary.LittleEndian.PutUint16(fill[format.Arch32.PageTypeOffset()+4:], 200)
	f.Pages = []synth.Page{{Fill: fill}}

	h, pg := firstPage(t, f)
	_, err := ReadPointers(pg, h.Arch, h.Decoder)
	require.ErrorIs(t, err, errors.CorruptPointer)
}
