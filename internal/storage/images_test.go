package storage

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDataURL(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir, "")

	payload := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	url, err := store.SaveDataURL("data:image/png;base64,"+payload, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/image_"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	// The file exists and round-trips the payload.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(data))
}

func TestSaveDataURLBaseURL(t *testing.T) {
	store := NewImageStore(t.TempDir(), "https://cdn.example.com/")
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	url, err := store.SaveDataURL("data:image/jpeg;base64,"+payload, 2)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/image_"))
	assert.True(t, strings.HasSuffix(url, "_2.jpeg"))
}

func TestSaveDataURLRejectsPlainURL(t *testing.T) {
	store := NewImageStore(t.TempDir(), "")
	_, err := store.SaveDataURL("https://example.com/casa.png", 0)
	assert.ErrorIs(t, err, ErrNotDataURL)
}

func TestSaveDataURLBadBase64(t *testing.T) {
	store := NewImageStore(t.TempDir(), "")
	_, err := store.SaveDataURL("data:image/png;base64,%%%not-base64%%%", 0)
	assert.Error(t, err)
}

func TestIsDataURL(t *testing.T) {
	assert.True(t, IsDataURL("data:image/png;base64,AAAA"))
	assert.False(t, IsDataURL("/uploads/casa.png"))
	assert.False(t, IsDataURL("data:image/png,AAAA"))
}
