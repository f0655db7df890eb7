package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/woms/internal/config"
)

func TestBuildDSN(t *testing.T) {
	t.Run("URLUsesRawValue", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io",
			AuthToken: "token123",
		}

		dsn, err := buildDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123", dsn)
	})

	t.Run("URLKeepsExistingToken", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io?authToken=original",
			AuthToken: "token123",
		}

		dsn, err := buildDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=original", dsn)
	})

	t.Run("MemoryPath", func(t *testing.T) {
		cfg := config.StoreConfig{Path: ":memory:"}

		dsn, err := buildDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})

	t.Run("PathWithFilePrefix", func(t *testing.T) {
		cfg := config.StoreConfig{Path: "file:./woms.db"}

		dsn, err := buildDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "file:./woms.db", dsn)
	})

	t.Run("PathMissing", func(t *testing.T) {
		_, err := buildDSN(config.StoreConfig{})
		require.Error(t, err)
	})
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(nil, config.StoreConfig{Driver: "postgres", Path: ":memory:"})
	require.Error(t, err)
}
