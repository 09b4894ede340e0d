package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHome_NotEmpty(t *testing.T) {
	assert.NotEmpty(t, UserHome())
}

func TestCheckFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.True(t, CheckFileExists(path))
	assert.False(t, CheckFileExists(filepath.Join(dir, "absent")))
}
