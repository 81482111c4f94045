package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bankdash/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_SOURCE", "memory")
	t.Setenv("THEME_STORE", "memory")
	t.Setenv("FETCH_DELAY", "0s")
	t.Setenv("SUMMARY_FETCH_DELAY", "0s")
	t.Setenv("AMQP_URL", "")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"--log-level", "error"}, args...), &out)
	return out.String(), err
}

func TestSummary(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "summary")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Total Income")
	assert.Contains(t, lines[0], "₹4,300")
	assert.Contains(t, lines[1], "₹1,402.68")
	assert.Contains(t, lines[2], "₹2,897.32")
	assert.True(t, strings.HasSuffix(lines[3], " 5"))
}

func TestCategoriesAndMonthly(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "2.7%")
	assert.Contains(t, out, "Income")

	out, err = runCLI(t, "monthly")
	require.NoError(t, err)
	assert.Contains(t, out, "Mar 2024")
	assert.Contains(t, out, "₹1,402.68")
}

func TestValidateUpload(t *testing.T) {
	out, err := runCLI(t, "validate-upload", "march.csv", "notes.txt")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 files rejected", err.Error())
	assert.Contains(t, out, "march.csv: ok")
	assert.Contains(t, out, "notes.txt: Invalid file format. Please upload a CSV file.")

	_, err = runCLI(t, "validate-upload", "--case-insensitive", "MARCH.CSV")
	assert.NoError(t, err)

	_, err = runCLI(t, "validate-upload", "MARCH.CSV")
	assert.Error(t, err)
}

func TestTheme(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, err = runCLI(t, "theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	_, err = runCLI(t, "theme", "purple")
	assert.Error(t, err)
}

func TestThemePersistsInSQLite(t *testing.T) {
	setupEnv(t)
	t.Setenv("THEME_STORE", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "bankdash.db"))

	_, err := runCLI(t, "theme", "toggle")
	require.NoError(t, err)

	out, err := runCLI(t, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)
}

func TestExportJSONFile(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "out.json")

	out, err := runCLI(t, "export", "--out", "jsonfile:"+path)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 5 transactions")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var docs []export.Document
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 5)
	assert.Equal(t, "memory", docs[0].Source)

	_, err = runCLI(t, "export", "--out", "s3:bucket")
	assert.Error(t, err)
}

func TestImportIntoSQLiteThenSummary(t *testing.T) {
	setupEnv(t)
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "bankdash.db"))

	out, err := runCLI(t, "import")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 5 transactions into sqlite")

	t.Setenv("DATA_SOURCE", "sqlite")
	out, err = runCLI(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "₹4,300")
	assert.Contains(t, out, "₹1,402.68")
	assert.Contains(t, out, "₹2,897.32")
}

func TestImportJSONFileRoundTrip(t *testing.T) {
	setupEnv(t)
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("DATA_DIR", dataDir)

	_, err := runCLI(t, "import", "--to", "jsonfile")
	require.NoError(t, err)

	// the written directory is itself a valid import source
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "bankdash.db"))
	out, err := runCLI(t, "import", "--from", "jsonfile:"+dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 5 transactions into sqlite")

	t.Setenv("DATA_SOURCE", "jsonfile")
	out, err = runCLI(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "2.7%")

	_, err = runCLI(t, "import", "--from", "s3:bucket")
	assert.Error(t, err)
}

func TestUploadsEmpty(t *testing.T) {
	setupEnv(t)
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "bankdash.db"))

	out, err := runCLI(t, "uploads")
	require.NoError(t, err)
	assert.Equal(t, "No uploads recorded.\n", out)
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "frobnicate")
	assert.Error(t, err)
}
