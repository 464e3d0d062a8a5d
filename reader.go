package sas7bdat

import (
	"io"
	"time"

	"github.com/wilhasse/go-sas7bdat/header"
	"github.com/wilhasse/go-sas7bdat/page"
	"github.com/wilhasse/go-sas7bdat/schema"
	"github.com/wilhasse/go-sas7bdat/subheader"
)

// Result is everything a metadata scan produces.
type Result struct {
	Header *header.Header
	Schema *schema.Schema

	// CompressedBlocks lists row-compressed blocks met while scanning, for a
	// row decoder to inflate.
	CompressedBlocks []schema.CompressedBlock

	Scan page.Summary
}

// Parse decodes the schema of the SAS7BDAT file read from r. Scanning stops at
// the first data page; later pages are never read. Any validation failure
// aborts the parse with a *errors.ParseError and no partial result.
func Parse(r io.ReadSeeker, cfg Config) (*Result, error) {
	log := cfg.GetLogger()
	start := time.Now()

	h, err := header.Parse(r, cfg.GetHostOrder())
	if err != nil {
		log.Error(err, "Header parsing failed")
		return nil, err
	}
	log.Debug("Header parsed",
		"arch", h.Arch.String(),
		"big_endian", h.BigEndian(),
		"swap", h.NeedSwap,
		"header_size", h.HeaderSize,
		"page_size", h.PageSize,
		"page_count", h.PageCount,
		"encoding", h.Encoding.Name,
	)

	b := schema.NewBuilder(h.Encoding)
	cur := page.NewCursor(r, h, log.Named("page"))
	disp := subheader.NewDispatcher(h, b, log.Named("subheader"))

	for {
		pg, err := cur.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Error(err, "Page scan failed")
			return nil, err
		}
		ptrs, err := page.ReadPointers(pg, h.Arch, h.Decoder)
		if err != nil {
			log.Error(err, "Subheader directory rejected", "page", pg.Index)
			return nil, err
		}
		if err = disp.Dispatch(pg, ptrs); err != nil {
			log.Error(err, "Subheader decoding failed", "page", pg.Index)
			return nil, err
		}
	}

	s, err := b.Finalize()
	if err != nil {
		log.Error(err, "Schema is incomplete")
		return nil, err
	}
	if extra := b.Extra(); extra > 0 {
		log.Warning("Ignoring column fragments past the declared column count", "extra", extra)
	}

	summary := cur.Summary()
	log.Info("Schema decoded",
		"columns", len(s.Columns),
		"rows", s.TotalRowCount,
		"pages_scanned", summary.PagesScanned,
		"pages_skipped", summary.PagesSkipped,
		"compressed_blocks", len(b.CompressedBlocks()),
		"elapsed", time.Since(start).String(),
	)
	return &Result{
		Header:           h,
		Schema:           s,
		CompressedBlocks: b.CompressedBlocks(),
		Scan:             summary,
	}, nil
}
