// schema.go - The decoded table schema
package schema

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Kind is the storage class of a column.
type Kind uint8

const (
	Numeric   Kind = 1
	Character Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Character:
		return "character"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "numeric":
		*k = Numeric
	case "character":
		*k = Character
	default:
		return fmt.Errorf("unknown column kind %q", b)
	}
	return nil
}

// Column describes where one column lives in a row.
type Column struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	ByteLength uint32 `json:"byte_length"`
	RowOffset  uint32 `json:"row_offset"`
	Format     string `json:"format,omitempty"`
	Label      string `json:"label,omitempty"`
}

// Schema is the finished result of a metadata scan.
type Schema struct {
	RowLength     uint64   `json:"row_length"`
	TotalRowCount uint64   `json:"total_row_count"`
	PageRowCount  uint32   `json:"page_row_count"`
	Columns       []Column `json:"columns"`
}

// Column returns the first column called name.
func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Fingerprint hashes the row layout and column list. Two files share a
// fingerprint exactly when their schemas are equal.
func (s *Schema) Fingerprint() string {
	h := blake3.New()
	var n [8]byte
	putU64 := func(v uint64) {
		binary.BigEndian.PutUint64(n[:], v)
		_, _ = h.Write(n[:])
	}
	putStr := func(v string) {
		putU64(uint64(len(v)))
		_, _ = h.Write([]byte(v))
	}

	putU64(s.RowLength)
	putU64(s.TotalRowCount)
	putU64(uint64(s.PageRowCount))
	putU64(uint64(len(s.Columns)))
	for _, c := range s.Columns {
		putStr(c.Name)
		putU64(uint64(c.Kind))
		putU64(uint64(c.ByteLength))
		putU64(uint64(c.RowOffset))
		putStr(c.Format)
		putStr(c.Label)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CompressedBlock locates row-compressed data left for a row decoder.
// Offset is absolute within the file.
type CompressedBlock struct {
	Page   int    `json:"page"`
	Offset int64  `json:"offset"`
	Length uint64 `json:"length"`
}
