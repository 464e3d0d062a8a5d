package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	sas7bdat "github.com/wilhasse/go-sas7bdat"
)

func outputText(out io.Writer, res *sas7bdat.Result, showBlocks bool) {
	h, s := res.Header, res.Schema

	fmt.Fprintf(out, "=== %s ===\n", orNone(h.Label))
	fmt.Fprintf(out, "\nHeader:\n")
	fmt.Fprintf(out, "  Layout:      %s, %s\n", h.Arch, byteOrder(h.BigEndian()))
	fmt.Fprintf(out, "  Platform:    %s\n", h.Platform())
	fmt.Fprintf(out, "  Encoding:    %s (%d)\n", h.Encoding.Name, h.Encoding.Code)
	fmt.Fprintf(out, "  Header Size: %d bytes\n", h.HeaderSize)
	fmt.Fprintf(out, "  Page Size:   %d bytes\n", h.PageSize)
	fmt.Fprintf(out, "  Pages:       %d\n", h.PageCount)
	fmt.Fprintf(out, "  Created:     %s\n", timestamp(h.Created))
	fmt.Fprintf(out, "  Modified:    %s\n", timestamp(h.Modified))
	fmt.Fprintf(out, "  SAS Release: %s on %s\n", orNone(h.Release), orNone(h.Host))

	fmt.Fprintf(out, "\nRows:\n")
	fmt.Fprintf(out, "  Row Length:  %d bytes\n", s.RowLength)
	fmt.Fprintf(out, "  Total Rows:  %d\n", s.TotalRowCount)
	fmt.Fprintf(out, "  Page Rows:   %d\n", s.PageRowCount)

	fmt.Fprintf(out, "\nColumns:\n")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  #\tName\tKind\tOffset\tLength\tFormat\tLabel\n")
	for _, c := range s.Columns {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			c.Index, c.Name, c.Kind, c.RowOffset, c.ByteLength, c.Format, c.Label)
	}
	w.Flush()

	fmt.Fprintf(out, "\nScan: %d pages scanned, %d compressed pages skipped", res.Scan.PagesScanned, res.Scan.PagesSkipped)
	if res.Scan.StoppedAt >= 0 {
		fmt.Fprintf(out, ", stopped at data page %d", res.Scan.StoppedAt)
	}
	fmt.Fprintln(out)

	if showBlocks {
		fmt.Fprintf(out, "\nRow-compressed blocks: %d\n", len(res.CompressedBlocks))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Page\tOffset\tLength\n")
		for _, b := range res.CompressedBlocks {
			fmt.Fprintf(w, "  %d\t%d\t%d\n", b.Page, b.Offset, b.Length)
		}
		w.Flush()
	}
}

func outputSummary(out io.Writer, path string, res *sas7bdat.Result) {
	fmt.Fprintf(out, "%s: %s %s, Columns=%d, Rows=%d, RowLength=%d, Fingerprint=%s\n",
		path, res.Header.Arch, byteOrder(res.Header.BigEndian()),
		len(res.Schema.Columns), res.Schema.TotalRowCount, res.Schema.RowLength,
		res.Schema.Fingerprint())
}

type jsonHeader struct {
	Arch       string    `json:"arch"`
	ByteOrder  string    `json:"byte_order"`
	Platform   string    `json:"platform"`
	Encoding   string    `json:"encoding"`
	HeaderSize uint32    `json:"header_size"`
	PageSize   uint32    `json:"page_size"`
	PageCount  uint64    `json:"page_count"`
	Label      string    `json:"label,omitempty"`
	Created    time.Time `json:"created"`
	Modified   time.Time `json:"modified"`
	Release    string    `json:"release,omitempty"`
	Host       string    `json:"host,omitempty"`
}

type jsonOutput struct {
	File             string                     `json:"file"`
	Header           jsonHeader                 `json:"header"`
	Schema           *sas7bdat.Schema           `json:"schema"`
	Fingerprint      string                     `json:"fingerprint"`
	Scan             sas7bdat.ScanSummary       `json:"scan"`
	CompressedBlocks []sas7bdat.CompressedBlock `json:"compressed_blocks,omitempty"`
}

func outputJSON(out io.Writer, path string, res *sas7bdat.Result, showBlocks bool) error {
	h := res.Header
	doc := jsonOutput{
		File: path,
		Header: jsonHeader{
			Arch:       h.Arch.String(),
			ByteOrder:  byteOrder(h.BigEndian()),
			Platform:   h.Platform(),
			Encoding:   h.Encoding.Name,
			HeaderSize: h.HeaderSize,
			PageSize:   h.PageSize,
			PageCount:  h.PageCount,
			Label:      h.Label,
			Created:    h.Created,
			Modified:   h.Modified,
			Release:    h.Release,
			Host:       h.Host,
		},
		Schema:      res.Schema,
		Fingerprint: res.Schema.Fingerprint(),
		Scan:        res.Scan,
	}
	if showBlocks {
		doc.CompressedBlocks = res.CompressedBlocks
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func byteOrder(big bool) string {
	if big {
		return "big-endian"
	}
	return "little-endian"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.RFC3339)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
