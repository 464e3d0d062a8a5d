// exports.go - Re-exports for main package API
package sas7bdat

import (
	"github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
	"github.com/wilhasse/go-sas7bdat/header"
	"github.com/wilhasse/go-sas7bdat/page"
	"github.com/wilhasse/go-sas7bdat/schema"
)

// Re-export types from format package
type (
	Arch        = format.Arch
	PageType    = format.PageType
	Compression = format.Compression
	Signature   = format.Signature
)

// Re-export constants from format package
const (
	Arch32 = format.Arch32
	Arch64 = format.Arch64

	PageTypeMeta = format.PageTypeMeta
	PageTypeData = format.PageTypeData
	PageTypeMix  = format.PageTypeMix
	PageTypeAmd  = format.PageTypeAmd
)

// Re-export types from header, page and schema packages
type (
	Header          = header.Header
	Geometry        = header.Geometry
	ScanSummary     = page.Summary
	Schema          = schema.Schema
	Column          = schema.Column
	ColumnKind      = schema.Kind
	CompressedBlock = schema.CompressedBlock
	ParseError      = errors.ParseError
	ErrorKind       = errors.Kind
)

// Re-export column kinds
const (
	Numeric   = schema.Numeric
	Character = schema.Character
)
