// Package synth writes small SAS7BDAT files for tests. Every field is laid
// out at the offsets the decoder reads, in either architecture and byte order.
package synth

import (
	"encoding/binary"
	"math"

	"github.com/wilhasse/go-sas7bdat/format"
)

// File describes a synthetic file. Zero values pick sizes that fit the
// subheaders tests usually need.
type File struct {
	Arch     format.Arch
	Order    binary.ByteOrder
	Aligned  bool
	Encoding uint8

	// Magic replaces the dataset magic when set.
	Magic *[format.MagicSize]byte
	// EndianByte replaces the endianness byte derived from Order when set.
	EndianByte *byte

	HeaderSize uint32 // default 1024
	PageSize   uint32 // default 4096
	// PageCount replaces len(Pages) in the header when set.
	PageCount *uint64

	FileType string
	Label    string
	Created  float32 // seconds since 1960-01-01
	Modified float32
	Release  string
	Host     string
	Version  string
	OSVendor string
	OSName   string

	Pages []Page
}

// Page is one page and its subheaders, in directory order.
type Page struct {
	Type       format.PageType
	Subheaders []Subheader
	// Fill replaces the whole page with these bytes when set.
	Fill []byte
}

// Subheader is one directory entry. Data is placed after the directory;
// Offset and Length override the pointer fields that would describe it.
type Subheader struct {
	Data        []byte
	Compression format.Compression
	Type        uint8

	Offset *uint64
	Length *uint64
}

// Uint64 returns a pointer to v, for the override fields.
func Uint64(v uint64) *uint64 { return &v }

func (f *File) headerSize() uint32 {
	if f.HeaderSize == 0 {
		return format.MinHeaderSize
	}
	return f.HeaderSize
}

func (f *File) pageSize() uint32 {
	if f.PageSize == 0 {
		return 4096
	}
	return f.PageSize
}

// Layout returns the encoder matching the file's architecture and order.
func (f *File) Layout() Layout { return Layout{Arch: f.Arch, Order: f.Order} }

// PageOffset is the absolute offset of page i.
func (f *File) PageOffset(i int) int64 {
	return int64(f.headerSize()) + int64(i)*int64(f.pageSize())
}

// Bytes renders the file.
func (f *File) Bytes() []byte {
	l := f.Layout()
	out := make([]byte, int(f.headerSize())+len(f.Pages)*int(f.pageSize()))
	f.writeHeader(l, out[:f.headerSize()])
	for i, p := range f.Pages {
		off := f.PageOffset(i)
		f.writePage(l, p, out[off:off+int64(f.pageSize())])
	}
	return out
}

func (f *File) writeHeader(l Layout, b []byte) {
	magic := format.MagicDataset
	if f.Magic != nil {
		magic = *f.Magic
	}
	copy(b, magic[:])

	b[format.HeaderArchOff] = 0x22
	if f.Arch == format.Arch64 {
		b[format.HeaderArchOff] = format.AlignmentMarker
	}
	align := 0
	b[format.HeaderAlignOff] = 0x22
	if f.Aligned {
		b[format.HeaderAlignOff] = format.AlignmentMarker
		align = 4
	}
	b[format.HeaderEndianOff] = format.EndianLittle
	if l.bigEndian() {
		b[format.HeaderEndianOff] = format.EndianBig
	}
	if f.EndianByte != nil {
		b[format.HeaderEndianOff] = *f.EndianByte
	}
	b[format.HeaderFileFormatOff] = format.FileFormatUnix
	b[format.HeaderEncodingOff] = f.Encoding
	putText(b[format.HeaderFileTypeOff:], f.FileType, format.FileTypeSize)
	putText(b[format.HeaderLabelOff:], f.Label, format.LabelSize)

	pos := format.HeaderPrefixSize + align
	l.Order.PutUint32(b[pos:], math.Float32bits(f.Created))
	l.Order.PutUint32(b[pos+4:], math.Float32bits(f.Modified))
	pos += 8 + 16
	l.Order.PutUint32(b[pos:], f.headerSize())
	l.Order.PutUint32(b[pos+4:], f.pageSize())
	pos += 8

	count := uint64(len(f.Pages))
	if f.PageCount != nil {
		count = *f.PageCount
	}
	l.PutWord(b, pos, count)
	pos += l.Arch.WordSize() + 8

	for _, field := range []struct {
		s string
		n int
	}{
		{f.Release, format.ReleaseSize},
		{f.Host, format.HostSize},
		{f.Version, format.VersionSize},
		{f.OSVendor, format.OSVendorSize},
		{f.OSName, format.OSNameSize},
	} {
		putText(b[pos:], field.s, field.n)
		pos += field.n
	}
}

func (f *File) writePage(l Layout, p Page, b []byte) {
	if p.Fill != nil {
		copy(b, p.Fill)
		return
	}
	typeOff := l.Arch.PageTypeOffset()
	l.Order.PutUint16(b[typeOff:], uint16(p.Type))
	l.Order.PutUint16(b[typeOff+4:], uint16(len(p.Subheaders)))

	w := l.Arch.WordSize()
	next := l.Arch.PageHeaderSize() + l.Arch.PointerSize()*len(p.Subheaders)
	for i, sh := range p.Subheaders {
		off, length := uint64(0), uint64(len(sh.Data))
		if len(sh.Data) > 0 {
			next = (next + 7) &^ 7
			off = uint64(next)
			copy(b[next:], sh.Data)
			next += len(sh.Data)
		}
		if sh.Offset != nil {
			off = *sh.Offset
		}
		if sh.Length != nil {
			length = *sh.Length
		}
		base := l.Arch.PageHeaderSize() + i*l.Arch.PointerSize()
		l.PutWord(b, base, off)
		l.PutWord(b, base+w, length)
		b[base+2*w] = uint8(sh.Compression)
		b[base+2*w+1] = sh.Type
	}
}

func putText(b []byte, s string, n int) {
	for i := 0; i < n; i++ {
		b[i] = ' '
	}
	copy(b[:n], s)
}
