package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	cfg, err := LoadConfig("")
	assert.Nil(err)
	assert.Equal(int64(defaultBitsize), cfg.Bitsize)
	assert.Equal(int64(defaultParties), cfg.Parties)
	assert.True(*cfg.OptimizedVerify)
	assert.False(cfg.Debug)

	path := filepath.Join(t.TempDir(), "pgc.yaml")
	require.Nil(t, os.WriteFile(path, []byte("bitsize: 8\noptimizedVerify: false\ndebug: true\n"), 0644))
	cfg, err = LoadConfig(path)
	assert.Nil(err)
	assert.Equal(int64(8), cfg.Bitsize)
	assert.Equal(int64(defaultParties), cfg.Parties)
	assert.False(*cfg.OptimizedVerify)
	logger, err := cfg.Logger()
	assert.Nil(err)
	assert.NotNil(logger)

	require.Nil(t, os.WriteFile(path, []byte("bitsize: [\n"), 0644))
	_, err = LoadConfig(path)
	assert.NotNil(err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(err)
}
