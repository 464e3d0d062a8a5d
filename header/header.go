// Package header parses the fixed SAS7BDAT file header: magic number,
// architecture, byte order, page geometry and the descriptive metadata that
// surrounds them.
package header

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
)

// sasEpoch is the origin of SAS timestamps.
var sasEpoch = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)

// Geometry is everything page scanning needs to know about the file.
type Geometry struct {
	Arch       format.Arch
	NeedSwap   bool
	HeaderSize uint32
	PageSize   uint32
	PageCount  uint64
}

// PageOffset returns the absolute offset of page i.
func (g Geometry) PageOffset(i uint64) int64 {
	return int64(g.HeaderSize) + int64(i)*int64(g.PageSize)
}

// Header is the parsed file header.
type Header struct {
	Geometry

	Decoder    format.Decoder
	Alignment  int
	FileFormat byte
	Encoding   format.TextEncoding
	FileType   string
	Label      string
	Created    time.Time
	Modified   time.Time

	Release  string
	Host     string
	Version  string
	OSVendor string
	OSName   string
}

// BigEndian reports whether the file was written most significant byte first.
func (h *Header) BigEndian() bool { return h.Decoder.FileBigEndian }

// Platform names the file-format byte.
func (h *Header) Platform() string {
	switch h.FileFormat {
	case format.FileFormatUnix:
		return "unix"
	case format.FileFormatWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// Parse reads the header from the start of r and leaves r positioned at the
// first page. host is the byte order integers are loaded in before any swap.
func Parse(r io.ReadSeeker, host binary.ByteOrder) (*Header, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(errors.IO, errors.NoPage, 0, err, "seek to header")
	}
	buf := make([]byte, format.MinHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(errors.IO, errors.NoPage, 0, err, "read header")
	}

	magic := buf[:format.MagicSize]
	if !bytes.Equal(magic, format.MagicDataset[:]) {
		if bytes.Equal(magic, format.MagicCatalog[:]) {
			return nil, errors.Newf(errors.UnsupportedVariant, errors.NoPage, 0, "catalog (sas7bcat) files are not supported")
		}
		return nil, errors.Newf(errors.BadMagic, errors.NoPage, 0, "not a sas7bdat file")
	}

	h := &Header{}
	h.Arch = format.Arch32
	if buf[format.HeaderArchOff] == format.AlignmentMarker {
		h.Arch = format.Arch64
	}
	if buf[format.HeaderAlignOff] == format.AlignmentMarker {
		h.Alignment = 4
	}

	order, ok := format.OrderFor(buf[format.HeaderEndianOff])
	if !ok {
		return nil, errors.Newf(errors.BadHeader, errors.NoPage, format.HeaderEndianOff,
			"invalid endianness byte %#02x", buf[format.HeaderEndianOff])
	}
	h.Decoder = format.NewDecoder(host, order)
	h.NeedSwap = h.Decoder.Swap

	h.FileFormat = buf[format.HeaderFileFormatOff]
	h.Encoding = format.EncodingFor(buf[format.HeaderEncodingOff])
	h.FileType = h.Encoding.Decode(buf[format.HeaderFileTypeOff : format.HeaderFileTypeOff+format.FileTypeSize])
	h.Label = h.Encoding.Decode(buf[format.HeaderLabelOff : format.HeaderLabelOff+format.LabelSize])

	c := cursor{buf: buf, dec: h.Decoder, pos: format.HeaderPrefixSize}
	c.skip(h.Alignment)
	h.Created = sasTime(c.u32())
	h.Modified = sasTime(c.u32())
	c.skip(16)

	sizeOff := c.pos
	headerSize := c.u32()
	pageSize := c.u32()
	if c.err != nil {
		return nil, errors.Wrap(errors.BadHeader, errors.NoPage, int64(sizeOff), c.err, "read geometry")
	}
	if headerSize < format.MinHeaderSize || headerSize > format.MaxHeaderSize {
		return nil, errors.Newf(errors.OutOfRange, errors.NoPage, int64(sizeOff),
			"header size %d outside [%d, %d]", headerSize, format.MinHeaderSize, format.MaxHeaderSize)
	}
	if pageSize < format.MinPageSize || pageSize > format.MaxPageSize {
		return nil, errors.Newf(errors.OutOfRange, errors.NoPage, int64(sizeOff+4),
			"page size %d outside [%d, %d]", pageSize, format.MinPageSize, format.MaxPageSize)
	}
	h.HeaderSize = headerSize
	h.PageSize = pageSize

	countOff := c.pos
	h.PageCount = c.word(h.Arch)
	if c.err != nil {
		return nil, errors.Wrap(errors.BadHeader, errors.NoPage, int64(countOff), c.err, "read page count")
	}
	if h.PageCount > format.MaxPageCount {
		return nil, errors.Newf(errors.OutOfRange, errors.NoPage, int64(countOff),
			"page count %d exceeds %d", h.PageCount, format.MaxPageCount)
	}

	c.skip(8)
	h.Release = c.text(h.Encoding, format.ReleaseSize)
	h.Host = c.text(h.Encoding, format.HostSize)
	h.Version = c.text(h.Encoding, format.VersionSize)
	h.OSVendor = c.text(h.Encoding, format.OSVendorSize)
	h.OSName = c.text(h.Encoding, format.OSNameSize)
	if c.err != nil {
		return nil, errors.Wrap(errors.BadHeader, errors.NoPage, int64(c.pos), c.err, "read host record")
	}

	if _, err := r.Seek(int64(h.HeaderSize), io.SeekStart); err != nil {
		return nil, errors.Wrap(errors.IO, errors.NoPage, int64(h.HeaderSize), err, "seek to first page")
	}
	return h, nil
}

func sasTime(bits uint32) time.Time {
	secs := float64(math.Float32frombits(bits))
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs == 0 {
		return time.Time{}
	}
	return sasEpoch.Add(time.Duration(secs * float64(time.Second)))
}

// cursor walks the header buffer with relative skips, keeping the first error.
type cursor struct {
	buf []byte
	dec format.Decoder
	pos int
	err error
}

func (c *cursor) skip(n int) { c.pos += n }

func (c *cursor) u32() uint32 {
	if c.err != nil {
		return 0
	}
	v, err := c.dec.U32(c.buf, c.pos)
	c.err = err
	c.pos += 4
	return v
}

func (c *cursor) word(a format.Arch) uint64 {
	if c.err != nil {
		return 0
	}
	v, err := c.dec.Word(c.buf, c.pos, a)
	c.err = err
	c.pos += a.WordSize()
	return v
}

func (c *cursor) text(enc format.TextEncoding, n int) string {
	if c.err != nil {
		return ""
	}
	b, err := c.dec.Bytes(c.buf, c.pos, n)
	c.err = err
	c.pos += n
	return enc.Decode(b)
}
