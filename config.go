package sas7bdat

import (
	"encoding/binary"

	"github.com/go-stdlog/stdlog"
)

// DefaultMaxInflatedSize caps how much an xz-compressed input may expand to.
const DefaultMaxInflatedSize = 1 << 30

type Config struct {
	// Logger receives debug output for every scanned page and subheader. If
	// unset, no logs are generated.
	Logger stdlog.Logger

	// HostOrder is the byte order integers are loaded in before being swapped
	// to the file's order. Defaults to the order of the running machine.
	HostOrder binary.ByteOrder

	// MaxInflatedSize limits the decompressed size of .xz inputs given to
	// Open. Defaults to DefaultMaxInflatedSize.
	MaxInflatedSize int64
}

func (c Config) GetLogger() stdlog.Logger {
	if c.Logger != nil {
		return c.Logger.Named("sas7bdat")
	}
	return stdlog.Discard
}

func (c Config) GetHostOrder() binary.ByteOrder {
	if c.HostOrder != nil {
		return c.HostOrder
	}
	return binary.NativeEndian
}

func (c Config) GetMaxInflatedSize() int64 {
	if c.MaxInflatedSize > 0 {
		return c.MaxInflatedSize
	}
	return DefaultMaxInflatedSize
}
