package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         "mysql",
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "inventory",
			TimeoutSeconds: 1,
		}

		// Connect should fail (timeout or refused)
		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("SQLite In-Memory", func(t *testing.T) {
		cfg := Config{
			Driver: "sqlite",
			Name:   ":memory:",
		}

		db, err := Connect(cfg)
		require.NoError(t, err)
		require.NotNil(t, db)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.NoError(t, sqlDB.Ping())
	})
}

func TestHasColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE snapshot_rows (item_id TEXT, qoh INTEGER, bin TEXT)").Error
	require.NoError(t, err)

	t.Run("All Present", func(t *testing.T) {
		missing, err := HasColumns(db, "snapshot_rows", []string{"item_id", "qoh"})
		assert.NoError(t, err)
		assert.Empty(t, missing)
	})

	t.Run("Missing Column", func(t *testing.T) {
		missing, err := HasColumns(db, "snapshot_rows", []string{"item_id", "warehouse_ref"})
		assert.NoError(t, err)
		assert.Equal(t, []string{"warehouse_ref"}, missing)
	})

	t.Run("Empty Names Skipped", func(t *testing.T) {
		missing, err := HasColumns(db, "snapshot_rows", []string{"", "bin"})
		assert.NoError(t, err)
		assert.Empty(t, missing)
	})
}
