package preferences

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")
	ctx := context.Background()

	first := NewFileStore(path, zap.NewNop())
	_, ok, err := first.LoadUnits(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "missing file means no stored preference")

	require.NoError(t, first.SaveUnits(ctx, models.UnitsImperial))

	// A new instance sees the earlier choice.
	second := NewFileStore(path, zap.NewNop())
	units, ok, err := second.LoadUnits(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.UnitsImperial, units)
}

func TestFileStoreIgnoresInvalidContent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for name, content := range map[string]string{
		"unknown.yaml": "units: kelvin\n",
		"garbage.yaml": "{{{: not yaml",
		"empty.yaml":   "",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, ok, err := NewFileStore(path, zap.NewNop()).LoadUnits(ctx)
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}
}

func TestRedisStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "", zap.NewNop())
	ctx := context.Background()

	mock.ExpectGet(DefaultRedisKey).RedisNil()
	_, ok, err := store.LoadUnits(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectSet(DefaultRedisKey, "imperial", 0).SetVal("OK")
	require.NoError(t, store.SaveUnits(ctx, models.UnitsImperial))

	mock.ExpectGet(DefaultRedisKey).SetVal("imperial")
	units, ok, err := store.LoadUnits(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.UnitsImperial, units)

	mock.ExpectGet(DefaultRedisKey).SetVal("kelvin")
	_, ok, err = store.LoadUnits(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet(DefaultRedisKey).SetErr(errors.New("connection refused"))
	_, _, err = store.LoadUnits(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, store.Close(), "a store over a caller's client owns nothing")
}

func TestNewSelectsBackend(t *testing.T) {
	logger := zap.NewNop()

	assert.IsType(t, NopStore{}, New(Config{}, logger))
	assert.IsType(t, NopStore{}, New(Config{Backend: "cookies"}, logger))
	assert.IsType(t, NopStore{}, New(Config{Backend: "redis", RedisURL: "not a url"}, logger))
	assert.IsType(t, &FileStore{}, New(Config{Backend: "file", Path: filepath.Join(t.TempDir(), "p.yaml")}, logger))
	assert.IsType(t, NopStore{}, New(Config{Backend: "redis", RedisURL: "redis://127.0.0.1:1/0"}, logger),
		"unreachable redis degrades to no storage")

	units, ok, err := NopStore{}.LoadUnits(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, units)
	assert.NoError(t, NopStore{}.SaveUnits(context.Background(), models.UnitsMetric))
}
