package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sas7bdat "github.com/wilhasse/go-sas7bdat"
	"github.com/wilhasse/go-sas7bdat/format"
	"github.com/wilhasse/go-sas7bdat/internal/synth"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visits.sas7bdat")
	data := synth.ThreeColumns(format.Arch64, binary.LittleEndian).Bytes()
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "visits", tableName("/data/visits.sas7bdat"))
	assert.Equal(t, "visits", tableName("visits.sas7bdat.xz"))
	assert.Equal(t, "visits", tableName("visits"))
}

func TestOutputs(t *testing.T) {
	path := writeFixture(t)
	res, err := sas7bdat.Open(path, sas7bdat.Config{})
	require.NoError(t, err)

	var text bytes.Buffer
	outputText(&text, res, true)
	assert.Contains(t, text.String(), "=== three columns ===")
	assert.Contains(t, text.String(), "64-bit, little-endian")
	assert.Contains(t, text.String(), "stopped at data page 1")
	assert.Contains(t, text.String(), "Row-compressed blocks: 0")

	var summary bytes.Buffer
	outputSummary(&summary, path, res)
	assert.Contains(t, summary.String(), "Columns=3, Rows=5, RowLength=20")
	assert.Contains(t, summary.String(), res.Schema.Fingerprint())

	var out bytes.Buffer
	require.NoError(t, outputJSON(&out, path, res, false))
	var doc jsonOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, res.Schema, doc.Schema)
	assert.Equal(t, "64-bit", doc.Header.Arch)
	assert.Equal(t, "UTF-8", doc.Header.Encoding)
}

func TestCheckCommand(t *testing.T) {
	path := writeFixture(t)
	sql := filepath.Join(t.TempDir(), "visits.sql")

	require.NoError(t, os.WriteFile(sql, []byte("CREATE TABLE visits (a DOUBLE, b DOUBLE, c CHAR(4))"), 0o644))
	assert.NoError(t, (&CheckCmd{SQL: sql, File: path}).Run(&Globals{}))

	require.NoError(t, os.WriteFile(sql, []byte("CREATE TABLE visits (a DOUBLE, b DATE, c CHAR(4))"), 0o644))
	assert.Error(t, (&CheckCmd{SQL: sql, File: path}).Run(&Globals{}))
}
