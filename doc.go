// Package sas7bdat decodes the schema of SAS7BDAT data files.
//
// The library is organized into logical groups of functionality:
//
// Core Types and Constants:
//   - format: layout constants, magic numbers, signatures, byte reversal and
//     bounds-checked field readers
//   - errors: the ParseError type and the Kind of every failure
//
// File Structure Components:
//   - header: the fixed file header (architecture, byte order, geometry)
//   - page: page iteration, classification and the subheader pointer table
//   - subheader: signature dispatch and the subheader decoders
//   - schema: schema assembly, plus a SQL view of the result
//
// I/O Operations:
//   - reader.go: Parse over any io.ReadSeeker
//   - open.go: Open for files on disk, plain or xz-compressed
//
// Tools:
//   - catalog: a SQLite record of parsed files, searchable by fingerprint
//   - cmd/sas7bdat: command-line schema dump, DDL, check and catalog
//
// Basic usage:
//
//	res, err := sas7bdat.Open("airline.sas7bdat", sas7bdat.Config{})
//	if err != nil {
//	    return err
//	}
//	for _, col := range res.Schema.Columns {
//	    fmt.Println(col.Name, col.Kind, col.RowOffset, col.ByteLength)
//	}
//
// Only metadata is decoded. Row values, and the row-compressed blocks listed
// in Result.CompressedBlocks, are left to a row decoder.
package sas7bdat
