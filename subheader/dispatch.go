// Package subheader routes subheaders to their decoders by signature and
// feeds the decoded fragments into a schema.Builder.
package subheader

import (
	"fmt"

	"github.com/go-stdlog/stdlog"

	"github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
	"github.com/wilhasse/go-sas7bdat/header"
	"github.com/wilhasse/go-sas7bdat/page"
	"github.com/wilhasse/go-sas7bdat/schema"
)

// Dispatcher decodes the subheaders of scanned pages.
type Dispatcher struct {
	arch format.Arch
	dec  format.Decoder
	b    *schema.Builder
	log  stdlog.Logger

	seen map[format.Signature]int
}

func NewDispatcher(h *header.Header, b *schema.Builder, log stdlog.Logger) *Dispatcher {
	return &Dispatcher{
		arch: h.Arch,
		dec:  h.Decoder,
		b:    b,
		log:  log,
		seen: make(map[format.Signature]int),
	}
}

// Seen returns how many subheaders of each kind were decoded.
func (d *Dispatcher) Seen() map[format.Signature]int { return d.seen }

// Dispatch decodes every non-empty pointer of pg, in directory order.
func (d *Dispatcher) Dispatch(pg *page.Page, ptrs []page.Pointer) error {
	for _, p := range ptrs {
		if p.Empty() {
			continue
		}
		if err := d.dispatch(pg, p); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(pg *page.Page, p page.Pointer) error {
	at := pg.Offset + int64(p.Offset)

	switch p.Compression {
	case format.CompressionRow:
		d.b.AddCompressedBlock(schema.CompressedBlock{Page: pg.Index, Offset: at, Length: p.Length})
		d.log.Debug("Recorded row-compressed block", "page", pg.Index, "offset", at, "length", p.Length)
		return nil
	case format.CompressionNone:
	default:
		return errors.Newf(errors.UnknownCompression, pg.Index, at,
			"pointer %d has compression byte %#02x", p.Index, uint8(p.Compression))
	}

	sigSize := uint64(d.arch.SignatureSize())
	if p.Length < sigSize || p.Offset+sigSize > uint64(len(pg.Data)) {
		return errors.Newf(errors.CorruptSubheader, pg.Index, at,
			"pointer %d: length %d cannot hold a %d-byte signature", p.Index, p.Length, sigSize)
	}

	blk := block{page: pg.Index, at: at, data: pg.Data[p.Offset : p.Offset+p.Length]}
	blk.sig = d.signature(blk.data)

	var err error
	switch blk.sig {
	case format.SignatureRowSize:
		err = d.rowSize(blk)
	case format.SignatureColumnSize:
		err = d.columnSize(blk)
	case format.SignatureColumnText:
		err = d.columnText(blk)
	case format.SignatureColumnName:
		err = d.columnName(blk)
	case format.SignatureColumnAttrs:
		err = d.columnAttrs(blk)
	case format.SignatureColumnFormat:
		err = d.columnFormat(blk)
	case format.SignatureCounts, format.SignatureColumnList:
	default:
		return errors.Newf(errors.UnknownSubheader, pg.Index, at,
			"pointer %d has signature %#08x", p.Index, uint32(blk.sig))
	}
	if err != nil {
		return err
	}
	d.seen[blk.sig]++
	d.log.Debug("Decoded subheader", "page", pg.Index, "offset", at, "length", p.Length, "signature", blk.sig.String())
	return nil
}

// signature reads the leading signature word. Big-endian 64-bit files store
// signatures as sign-extended 8-byte values; their first word is all ones and
// the second holds the signature.
func (d *Dispatcher) signature(data []byte) format.Signature {
	v, _ := d.dec.U32(data, 0)
	if d.arch.SignatureSize() == 8 && d.dec.FileBigEndian && v == 0xFFFFFFFF {
		v, _ = d.dec.U32(data, 4)
	}
	return format.Signature(v)
}

// block is one subheader's bytes and where they came from.
type block struct {
	page int
	at   int64
	sig  format.Signature
	data []byte
}

func (b block) fail(rel int, err error, reason string, args ...any) error {
	return errors.Wrap(errors.CorruptSubheader, b.page, b.at+int64(rel), err,
		b.sig.String()+": "+fmt.Sprintf(reason, args...))
}
