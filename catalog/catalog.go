// Package catalog records decoded schemas in a SQLite database, so files that
// share a row layout can be found by fingerprint.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-stdlog/stdlog"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	sas7bdat "github.com/wilhasse/go-sas7bdat"
	"github.com/wilhasse/go-sas7bdat/schema"
)

const driverName = "sqlite"

// ErrNotFound is returned when no dataset has the requested id.
var ErrNotFound = errors.New("dataset not found")

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS datasets (
		id          TEXT PRIMARY KEY,
		path        TEXT NOT NULL UNIQUE,
		fingerprint TEXT NOT NULL,
		label       TEXT NOT NULL,
		arch        TEXT NOT NULL,
		byte_order  TEXT NOT NULL,
		encoding    TEXT NOT NULL,
		row_length  INTEGER NOT NULL,
		total_rows  INTEGER NOT NULL,
		page_rows   INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS datasets_fingerprint ON datasets (fingerprint)`,
	`CREATE TABLE IF NOT EXISTS columns (
		dataset_id  TEXT NOT NULL REFERENCES datasets (id) ON DELETE CASCADE,
		idx         INTEGER NOT NULL,
		name        TEXT NOT NULL,
		kind        TEXT NOT NULL,
		byte_length INTEGER NOT NULL,
		row_offset  INTEGER NOT NULL,
		format      TEXT NOT NULL,
		label       TEXT NOT NULL,
		PRIMARY KEY (dataset_id, idx)
	)`,
}

// Dataset is one recorded file.
type Dataset struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Fingerprint string    `json:"fingerprint"`
	Label       string    `json:"label,omitempty"`
	Arch        string    `json:"arch"`
	ByteOrder   string    `json:"byte_order"`
	Encoding    string    `json:"encoding"`
	RowLength   uint64    `json:"row_length"`
	TotalRows   uint64    `json:"total_rows"`
	PageRows    uint32    `json:"page_rows"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Catalog is an open catalog database.
type Catalog struct {
	db  *sql.DB
	log stdlog.Logger
}

// dsn applies the connection pragmas to every connection the pool dials.
func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)"
}

// Open opens or creates the catalog at path. A nil log discards output.
func Open(ctx context.Context, path string, log stdlog.Logger) (*Catalog, error) {
	if log == nil {
		log = stdlog.Discard
	}
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate catalog %s: %w", path, err)
		}
	}
	log.Debug("Catalog opened", "path", path)
	return &Catalog{db: db, log: log}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Record stores the result of parsing the file at path and returns the new
// dataset id. An earlier record of the same path is replaced.
func (c *Catalog) Record(ctx context.Context, path string, res *sas7bdat.Result) (string, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE path = ?`, path); err != nil {
		return "", fmt.Errorf("replace %s: %w", path, err)
	}

	h, s := res.Header, res.Schema
	byteOrder := "little-endian"
	if h.BigEndian() {
		byteOrder = "big-endian"
	}
	id := uuid.New().String()
	_, err = tx.ExecContext(ctx, `INSERT INTO datasets
		(id, path, fingerprint, label, arch, byte_order, encoding, row_length, total_rows, page_rows, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, path, s.Fingerprint(), h.Label, h.Arch.String(), byteOrder, h.Encoding.Name,
		int64(s.RowLength), int64(s.TotalRowCount), int64(s.PageRowCount),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert dataset %s: %w", path, err)
	}

	for _, col := range s.Columns {
		_, err = tx.ExecContext(ctx, `INSERT INTO columns
			(dataset_id, idx, name, kind, byte_length, row_offset, format, label)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, col.Index, col.Name, col.Kind.String(), int64(col.ByteLength), int64(col.RowOffset), col.Format, col.Label,
		)
		if err != nil {
			return "", fmt.Errorf("insert column %s of %s: %w", col.Name, path, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit %s: %w", path, err)
	}
	c.log.Info("Dataset recorded", "id", id, "path", path, "columns", len(s.Columns))
	return id, nil
}

const datasetColumns = `id, path, fingerprint, label, arch, byte_order, encoding, row_length, total_rows, page_rows, recorded_at`

func scanDataset(row interface{ Scan(...any) error }) (Dataset, error) {
	var (
		d                              Dataset
		rowLength, totalRows, pageRows int64
		recordedAt                     string
	)
	err := row.Scan(&d.ID, &d.Path, &d.Fingerprint, &d.Label, &d.Arch, &d.ByteOrder, &d.Encoding,
		&rowLength, &totalRows, &pageRows, &recordedAt)
	if err != nil {
		return Dataset{}, err
	}
	d.RowLength, d.TotalRows, d.PageRows = uint64(rowLength), uint64(totalRows), uint32(pageRows)
	if d.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return Dataset{}, fmt.Errorf("dataset %s: bad timestamp %q: %w", d.ID, recordedAt, err)
	}
	return d, nil
}

// Dataset returns the dataset recorded under id.
func (c *Catalog) Dataset(ctx context.Context, id string) (Dataset, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+datasetColumns+` FROM datasets WHERE id = ?`, id)
	d, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Dataset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, err
}

// Find returns every dataset with the given schema fingerprint, by path.
func (c *Catalog) Find(ctx context.Context, fingerprint string) ([]Dataset, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+datasetColumns+` FROM datasets WHERE fingerprint = ? ORDER BY path`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", fingerprint, err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Columns returns the recorded columns of a dataset in index order.
func (c *Catalog) Columns(ctx context.Context, id string) ([]schema.Column, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT idx, name, kind, byte_length, row_offset, format, label
		FROM columns WHERE dataset_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", id, err)
	}
	defer rows.Close()

	var out []schema.Column
	for rows.Next() {
		var (
			col                   schema.Column
			kind                  string
			byteLength, rowOffset int64
		)
		if err := rows.Scan(&col.Index, &col.Name, &kind, &byteLength, &rowOffset, &col.Format, &col.Label); err != nil {
			return nil, err
		}
		if err := col.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, err
		}
		col.ByteLength, col.RowOffset = uint32(byteLength), uint32(rowOffset)
		out = append(out, col)
	}
	return out, rows.Err()
}
