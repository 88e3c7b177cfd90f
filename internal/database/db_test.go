package database

import (
	"path/filepath"
	"testing"

	"github.com/fyerfyer/legal-summary/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDirAndMigrates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := Open(cfg, nil)
	require.NoError(t, err)
	defer Close(db)

	assert.FileExists(t, cfg.DSN)
	assert.True(t, db.Migrator().HasTable(&models.SummaryRecord{}))
	assert.True(t, db.Migrator().HasTable(&models.EvaluationRun{}))
}

func TestOpenUnsupportedType(t *testing.T) {
	_, err := Open(&Config{Type: "postgres", DSN: "x"}, nil)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	assert.NoError(t, Close(nil))

	cfg := DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "close.db")
	db, err := Open(cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, Close(db))
}
