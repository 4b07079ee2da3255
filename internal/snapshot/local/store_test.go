package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFileAndReturnsURI(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	uri, err := store.Save(context.Background(), "feeds/astro-ph.CO/x.xml", []byte("<feed/>"))
	require.NoError(t, err)

	path := filepath.Join(dir, "feeds", "astro-ph.CO", "x.xml")
	assert.Equal(t, "file://"+path, uri)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("<feed/>"), data)
}

func TestNewStoreRequiresDir(t *testing.T) {
	t.Parallel()

	_, err := NewStore("")
	require.Error(t, err)
}
