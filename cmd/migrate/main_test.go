package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edelguur/admin-backend/pkg/migrate"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newMigrateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateThenValidate(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "create", "Add Banner Sort", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	files, err := filepath.Glob(filepath.Join(dir, "*_add_banner_sort.sql"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	out, err = run(t, "validate", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "migrations ok\n", out)
}

func TestValidateRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up\n"), 0o644))

	_, err := run(t, "validate", "--dir", dir)
	assert.Error(t, err)
}

func TestArgumentChecks(t *testing.T) {
	_, err := run(t, "to")
	assert.Error(t, err)
	_, err = run(t, "create")
	assert.Error(t, err)
}

func TestPrintStatus(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printStatus(&out, []migrate.Status{
		{Version: 20250110090000, Path: "20250110090000_create_users_table.sql", Applied: true, AppliedAt: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)},
		{Version: 20250110090100, Path: "20250110090100_create_reference_tables.sql"},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "applied")
	assert.Contains(t, lines[1], "2025-01-10 09:00:00")
	assert.Contains(t, lines[2], "pending")
}
