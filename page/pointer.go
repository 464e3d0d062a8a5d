// pointer.go - Subheader pointer directory of a page
package page

import (
	"github.com/wilhasse/go-sas7bdat/errors"
	"github.com/wilhasse/go-sas7bdat/format"
)

// Pointer locates one subheader inside its page. Offset is relative to the
// start of the page.
type Pointer struct {
	Index       int
	Offset      uint64
	Length      uint64
	Compression format.Compression
	Type        uint8
}

// Empty reports a placeholder entry that carries no subheader.
func (p Pointer) Empty() bool {
	return p.Length == 0 || p.Compression == format.CompressionTruncated
}

// ReadPointers reads the subheader directory of pg and checks that every
// non-empty pointer lies inside the page, past the directory itself.
func ReadPointers(pg *Page, arch format.Arch, dec format.Decoder) ([]Pointer, error) {
	pageSize := uint64(len(pg.Data))
	countOff := arch.PageTypeOffset() + 4

	count, err := dec.U16(pg.Data, countOff)
	if err != nil {
		return nil, errors.Wrap(errors.CorruptPointer, pg.Index, pg.Offset+int64(countOff), err, "read subheader count")
	}

	ptrSize := uint64(arch.PointerSize())
	dirEnd := uint64(arch.PageHeaderSize()) + ptrSize*uint64(count)
	if dirEnd > pageSize {
		return nil, errors.Newf(errors.CorruptPointer, pg.Index, pg.Offset+int64(countOff),
			"%d subheader pointers end at %d, past page size %d", count, dirEnd, pageSize)
	}

	w := arch.WordSize()
	ptrs := make([]Pointer, 0, count)
	for i := 0; i < int(count); i++ {
		base := arch.PageHeaderSize() + i*int(ptrSize)
		at := pg.Offset + int64(base)

		off, err := dec.Word(pg.Data, base, arch)
		if err != nil {
			return nil, errors.Wrap(errors.CorruptPointer, pg.Index, at, err, "read pointer offset")
		}
		length, err := dec.Word(pg.Data, base+w, arch)
		if err != nil {
			return nil, errors.Wrap(errors.CorruptPointer, pg.Index, at, err, "read pointer length")
		}
		p := Pointer{
			Index:       i,
			Offset:      off,
			Length:      length,
			Compression: format.Compression(pg.Data[base+2*w]),
			Type:        pg.Data[base+2*w+1],
		}

		if !p.Empty() {
			switch {
			case p.Offset > pageSize || p.Length > pageSize || p.Offset+p.Length > pageSize:
				return nil, errors.Newf(errors.CorruptPointer, pg.Index, at,
					"pointer %d (offset %d, length %d) exceeds page size %d", i, p.Offset, p.Length, pageSize)
			case p.Offset < dirEnd:
				return nil, errors.Newf(errors.CorruptPointer, pg.Index, at,
					"pointer %d offset %d overlaps the page directory ending at %d", i, p.Offset, dirEnd)
			}
		}
		ptrs = append(ptrs, p)
	}
	return ptrs, nil
}
