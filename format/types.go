// types.go - Constants and basic types of the SAS7BDAT layout
package format

// Header geometry bounds
const (
	MinHeaderSize = 1024
	MaxHeaderSize = 1 << 20
	MinPageSize   = 1024
	MaxPageSize   = 1 << 24
	MaxPageCount  = 1 << 24
)

// Fixed offsets inside the file header
const (
	MagicSize           = 32
	HeaderArchOff       = 32 // 0x33 marks a 64-bit file
	HeaderAlignOff      = 35 // 0x33 adds 4 bytes of padding before the timestamps
	HeaderEndianOff     = 37
	HeaderFileFormatOff = 39
	HeaderEncodingOff   = 70
	HeaderFileTypeOff   = 84
	HeaderLabelOff      = 92
	HeaderPrefixSize    = 164 // end of the fixed leading record

	FileTypeSize  = 8
	LabelSize     = 64
	ReleaseSize   = 8
	HostSize      = 16
	VersionSize   = 16
	OSVendorSize  = 16
	OSNameSize    = 16
	HostExtraSize = 48
)

const (
	AlignmentMarker = 0x33

	EndianBig    = 0x00
	EndianLittle = 0x01

	FileFormatUnix    = '1'
	FileFormatWindows = '2'
)

var (
	// MagicDataset opens every SAS7BDAT file.
	MagicDataset = [MagicSize]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0xc2, 0xea, 0x81, 0x60,
		0xb3, 0x14, 0x11, 0xcf, 0xbd, 0x92, 0x08, 0x00,
		0x09, 0xc7, 0x31, 0x8c, 0x18, 0x1f, 0x10, 0x11,
	}

	// MagicCatalog opens SAS7BCAT catalog files, which are not decoded.
	MagicCatalog = [MagicSize]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0xc2, 0xea, 0x81, 0x63,
		0xb3, 0x14, 0x11, 0xcf, 0xbd, 0x92, 0x08, 0x00,
		0x09, 0xc7, 0x31, 0x8c, 0x18, 0x1f, 0x10, 0x11,
	}
)

// Arch selects the width of pointers and architecture-sized integers.
type Arch uint8

const (
	Arch32 Arch = 32
	Arch64 Arch = 64
)

// WordSize is the width of architecture-sized integers.
func (a Arch) WordSize() int {
	if a == Arch64 {
		return 8
	}
	return 4
}

// SignatureSize is the width of a subheader signature.
func (a Arch) SignatureSize() int { return a.WordSize() }

// ColumnEntryTrailer is the size of the block that follows the last entry of a
// column-name or column-attrs subheader: 8 bytes on 32-bit, 12 on 64-bit.
func (a Arch) ColumnEntryTrailer() int { return a.SignatureSize() + 4 }

// PageTypeOffset is where the page type sits: after the 4-byte page
// signature and 12 (32-bit) or 28 (64-bit) reserved bytes.
func (a Arch) PageTypeOffset() int {
	if a == Arch64 {
		return 32
	}
	return 16
}

// PageHeaderSize is the size of the page header, up to the pointer table.
func (a Arch) PageHeaderSize() int {
	if a == Arch64 {
		return 40
	}
	return 24
}

// PointerSize is the size of one subheader pointer record.
func (a Arch) PointerSize() int {
	if a == Arch64 {
		return 24
	}
	return 12
}

func (a Arch) String() string {
	if a == Arch64 {
		return "64-bit"
	}
	return "32-bit"
}

// Page types. Only the bits under PageTypeMask select the type; Meta2 and
// Comp are independent flag patterns.
type PageType uint16

const (
	PageTypeMeta PageType = 0x0000
	PageTypeData PageType = 0x0100
	PageTypeMix  PageType = 0x0200
	PageTypeAmd  PageType = 0x0400
	PageTypeMask PageType = 0x0F00

	PageFlagMeta2 PageType = 0x4000
	PageFlagComp  PageType = 0x9000
)

// Masked returns the type bits only.
func (t PageType) Masked() PageType { return t & PageTypeMask }

// Has reports whether every bit of flag is set.
func (t PageType) Has(flag PageType) bool { return t&flag == flag }

func (t PageType) String() string {
	switch t.Masked() {
	case PageTypeMeta:
		return "META"
	case PageTypeData:
		return "DATA"
	case PageTypeMix:
		return "MIX"
	case PageTypeAmd:
		return "AMD"
	default:
		return "OTHER"
	}
}

// Compression is the compression byte of a subheader pointer.
type Compression uint8

const (
	CompressionNone      Compression = 0x00
	CompressionTruncated Compression = 0x01
	CompressionRow       Compression = 0x04
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "NONE"
	case CompressionTruncated:
		return "TRUNCATED"
	case CompressionRow:
		return "ROW"
	default:
		return "UNKNOWN"
	}
}

// Signature identifies the kind of a subheader.
type Signature uint32

const (
	SignatureRowSize      Signature = 0xF7F7F7F7
	SignatureColumnSize   Signature = 0xF6F6F6F6
	SignatureCounts       Signature = 0xFFFFFC00
	SignatureColumnFormat Signature = 0xFFFFFBFE
	SignatureColumnAttrs  Signature = 0xFFFFFFFC
	SignatureColumnText   Signature = 0xFFFFFFFD
	SignatureColumnList   Signature = 0xFFFFFFFE
	SignatureColumnName   Signature = 0xFFFFFFFF
)

func (s Signature) String() string {
	switch s {
	case SignatureRowSize:
		return "ROW_SIZE"
	case SignatureColumnSize:
		return "COLUMN_SIZE"
	case SignatureCounts:
		return "COUNTS"
	case SignatureColumnFormat:
		return "COLUMN_FORMAT"
	case SignatureColumnAttrs:
		return "COLUMN_ATTRS"
	case SignatureColumnText:
		return "COLUMN_TEXT"
	case SignatureColumnList:
		return "COLUMN_LIST"
	case SignatureColumnName:
		return "COLUMN_NAME"
	default:
		return "UNKNOWN"
	}
}

// Column kind bytes in column-attribute entries
const (
	ColumnKindNumeric   = 0x01
	ColumnKindCharacter = 0x02
)

// Subheader layout
const (
	TextRefSize           = 8 // u16 index, u16 offset, u16 length, 2 pad
	ColumnEntryHeaderSize = 8 // bytes between the signature and the first entry

	RowSizeRowLengthSlot     = 5
	RowSizeTotalRowsSlot     = 6
	RowSizePageRowsSlot      = 15
	RowSizeMinSignatureSlots = 16
)

// FormatRefOffset is where the format text reference of a column-format
// subheader sits; the label reference follows 6 bytes later.
func FormatRefOffset(a Arch) int {
	if a == Arch64 {
		return 46
	}
	return 34
}

// LabelRefOffset is where the label text reference of a column-format
// subheader sits.
func LabelRefOffset(a Arch) int { return FormatRefOffset(a) + 6 }

// ColumnFormatMinSize is the shortest column-format subheader.
func ColumnFormatMinSize(a Arch) int { return LabelRefOffset(a) + 6 }
