package sas7bdat

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/heyvito/gommap"
	"github.com/ulikunitz/xz"

	"github.com/wilhasse/go-sas7bdat/errors"
)

// Open parses the file at path and closes it before returning. Paths ending
// in .xz are inflated in memory first; other files are mapped read-only, or
// read through the file when mapping is not possible.
func Open(path string, cfg Config) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.IO, errors.NoPage, -1, err, "open "+path)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".xz") {
		return parseXZ(f, cfg)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(errors.IO, errors.NoPage, -1, err, "stat "+path)
	}
	if stat.Size() == 0 {
		return Parse(bytes.NewReader(nil), cfg)
	}

	mapped, err := gommap.Map(f.Fd(), gommap.PROT_READ, gommap.MAP_SHARED)
	if err != nil {
		cfg.GetLogger().Debug("Memory mapping unavailable, reading through the file", "path", path, "error", err.Error())
		return Parse(f, cfg)
	}
	defer func() { _ = mapped.UnsafeUnmap() }()
	return Parse(bytes.NewReader(mapped), cfg)
}

func parseXZ(r io.Reader, cfg Config) (*Result, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.IO, errors.NoPage, -1, err, "open xz stream")
	}
	limit := cfg.GetMaxInflatedSize()
	data, err := io.ReadAll(io.LimitReader(xr, limit+1))
	if err != nil {
		return nil, errors.Wrap(errors.IO, errors.NoPage, -1, err, "inflate xz stream")
	}
	if int64(len(data)) > limit {
		return nil, errors.Newf(errors.IO, errors.NoPage, -1, "xz stream inflates past %s", humanize.IBytes(uint64(limit)))
	}
	return Parse(bytes.NewReader(data), cfg)
}
