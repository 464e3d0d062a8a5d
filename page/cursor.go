// cursor.go - Page iteration and classification
package page

import (
	"fmt"
	"io"

	"github.com/go-stdlog/stdlog"

	"github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
	"github.com/wilhasse/go-sas7bdat/header"
)

// Descriptor identifies one page and its type bits.
type Descriptor struct {
	Index  int
	Offset int64
	Type   format.PageType // raw value, flags included
}

func (d Descriptor) Kind() format.PageType { return d.Type.Masked() }
func (d Descriptor) Meta2() bool           { return d.Type.Has(format.PageFlagMeta2) }
func (d Descriptor) Comp() bool            { return d.Type.Has(format.PageFlagComp) }

// Page is a loaded page. Data is only valid until the next call to Cursor.Next.
type Page struct {
	Descriptor
	Data []byte
}

// Summary tells how a scan went. StoppedAt is the index of the data page that
// ended it, or -1 when every declared page was visited.
type Summary struct {
	PagesScanned int `json:"pages_scanned"`
	PagesSkipped int `json:"pages_skipped"`
	StoppedAt    int `json:"stopped_at"`
}

// Cursor walks pages in order, handing out those whose subheaders must be
// scanned. It stops for good at the first data page.
type Cursor struct {
	r    io.ReadSeeker
	geom header.Geometry
	dec  format.Decoder
	log  stdlog.Logger

	buf     []byte
	next    uint64
	done    bool
	summary Summary
}

func NewCursor(r io.ReadSeeker, h *header.Header, log stdlog.Logger) *Cursor {
	return &Cursor{
		r:       r,
		geom:    h.Geometry,
		dec:     h.Decoder,
		log:     log,
		buf:     make([]byte, h.PageSize),
		summary: Summary{StoppedAt: -1},
	}
}

// Summary returns the scan counters so far.
func (c *Cursor) Summary() Summary { return c.summary }

// Next returns the next page to scan, or io.EOF once the metadata scan is over.
func (c *Cursor) Next() (*Page, error) {
	typeOff := c.geom.Arch.PageTypeOffset()
	hdrSize := c.geom.Arch.PageHeaderSize()

	for !c.done && c.next < c.geom.PageCount {
		idx := c.next
		c.next++
		off := c.geom.PageOffset(idx)

		if _, err := c.r.Seek(off, io.SeekStart); err != nil {
			return nil, errors.Wrap(errors.IO, int(idx), off, err, "seek to page")
		}
		if _, err := io.ReadFull(c.r, c.buf[:hdrSize]); err != nil {
			return nil, errors.Wrap(errors.IO, int(idx), off, err, fmt.Sprintf("read page %d header", idx))
		}
		raw, err := c.dec.U16(c.buf, typeOff)
		if err != nil {
			return nil, errors.Wrap(errors.IO, int(idx), off+int64(typeOff), err, "read page type")
		}
		d := Descriptor{Index: int(idx), Offset: off, Type: format.PageType(raw)}

		if d.Kind() == format.PageTypeData {
			c.done = true
			c.summary.StoppedAt = d.Index
			c.log.Debug("Data page reached, metadata scan complete", "page", d.Index)
			return nil, io.EOF
		}
		if d.Comp() {
			c.summary.PagesSkipped++
			c.log.Debug("Skipping compressed page", "page", d.Index, "type", fmt.Sprintf("%#04x", raw))
			continue
		}

		if _, err := io.ReadFull(c.r, c.buf[hdrSize:]); err != nil {
			return nil, errors.Wrap(errors.IO, d.Index, off+int64(hdrSize), err, fmt.Sprintf("read page %d", idx))
		}
		c.summary.PagesScanned++
		c.log.Debug("Scanning page", "page", d.Index, "type", d.Kind().String(), "meta2", d.Meta2())
		return &Page{Descriptor: d, Data: c.buf}, nil
	}
	c.done = true
	return nil, io.EOF
}
