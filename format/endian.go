// endian.go - Byte reversal and bounds-checked field readers
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// ErrOutOfBounds is returned by Decoder when a field does not fit in its buffer.
var ErrOutOfBounds = errors.New("field out of bounds")

// Integer is any fixed-width integer Swap accepts.
type Integer interface {
	~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

func Swap16(v uint16) uint16 {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return binary.BigEndian.Uint16(b[:])
}

func Swap32(v uint32) uint32 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return binary.BigEndian.Uint32(b[:])
}

func Swap64(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return binary.BigEndian.Uint64(b[:])
}

// Swap reverses the byte representation of v.
func Swap[T Integer](v T) T {
	switch unsafe.Sizeof(v) {
	case 2:
		return T(Swap16(uint16(v)))
	case 4:
		return T(Swap32(uint32(v)))
	default:
		return T(Swap64(uint64(v)))
	}
}

// IsBigEndian reports whether order stores the most significant byte first.
func IsBigEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{0x00, 0x01}) == 0x0001
}

// OrderFor returns the byte order stored in the header endianness byte.
func OrderFor(endian byte) (binary.ByteOrder, bool) {
	switch endian {
	case EndianBig:
		return binary.BigEndian, true
	case EndianLittle:
		return binary.LittleEndian, true
	}
	return nil, false
}

// Decoder reads fields in host order and reverses them when the file was
// written in the other order.
type Decoder struct {
	Host binary.ByteOrder
	Swap bool
	// FileBigEndian is the byte order the file was written in.
	FileBigEndian bool
}

// NewDecoder builds a Decoder for a file written in file order read on a
// machine using host order.
func NewDecoder(host, file binary.ByteOrder) Decoder {
	return Decoder{
		Host:          host,
		Swap:          IsBigEndian(host) != IsBigEndian(file),
		FileBigEndian: IsBigEndian(file),
	}
}

func span(b []byte, off, n int) error {
	if off < 0 || off+n > len(b) || off+n < off {
		return fmt.Errorf("%w: %d bytes at %d of %d", ErrOutOfBounds, n, off, len(b))
	}
	return nil
}

func (d Decoder) U8(b []byte, off int) (uint8, error) {
	if err := span(b, off, 1); err != nil {
		return 0, err
	}
	return b[off], nil
}

func (d Decoder) U16(b []byte, off int) (uint16, error) {
	if err := span(b, off, 2); err != nil {
		return 0, err
	}
	v := d.Host.Uint16(b[off : off+2])
	if d.Swap {
		v = Swap16(v)
	}
	return v, nil
}

func (d Decoder) U32(b []byte, off int) (uint32, error) {
	if err := span(b, off, 4); err != nil {
		return 0, err
	}
	v := d.Host.Uint32(b[off : off+4])
	if d.Swap {
		v = Swap32(v)
	}
	return v, nil
}

func (d Decoder) U64(b []byte, off int) (uint64, error) {
	if err := span(b, off, 8); err != nil {
		return 0, err
	}
	v := d.Host.Uint64(b[off : off+8])
	if d.Swap {
		v = Swap64(v)
	}
	return v, nil
}

// Word reads an architecture-sized unsigned integer.
func (d Decoder) Word(b []byte, off int, a Arch) (uint64, error) {
	if a == Arch64 {
		return d.U64(b, off)
	}
	v, err := d.U32(b, off)
	return uint64(v), err
}

// Bytes returns n bytes at off without copying.
func (d Decoder) Bytes(b []byte, off, n int) ([]byte, error) {
	if err := span(b, off, n); err != nil {
		return nil, err
	}
	return b[off : off+n], nil
}
