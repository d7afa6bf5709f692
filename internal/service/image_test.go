package service_test

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	img, err := service.DecodeDataURI(pngDataURI())
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension)
	assert.True(t, strings.HasPrefix(string(img.Data), "\x89PNG"))

	// The declared type is ignored in favour of the payload.
	lying := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(pngHeader))
	img, err = service.DecodeDataURI(lying)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestDecodeDataURIRejects(t *testing.T) {
	oversized := make([]byte, service.MaxImageSize+1)
	copy(oversized, pngHeader)

	tests := map[string]string{
		"plain url":     "https://example.com/image.png",
		"not base64":    "data:image/png,rawdata",
		"bad payload":   "data:image/png;base64,!!!",
		"empty payload": "data:image/png;base64,",
		"text payload":  "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("just some text")),
		"too large":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(oversized),
	}
	for name, uri := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := service.DecodeDataURI(uri)
			assert.ErrorIs(t, err, service.ErrInvalidImage)
		})
	}
}

func TestLocalImageStore(t *testing.T) {
	dir := t.TempDir()
	store := service.NewLocalImageStore(dir, "/media/")
	ctx := context.Background()

	url, err := store.Save(ctx, "recipes/abc.png", []byte("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/abc.png", url)

	onDisk, err := os.ReadFile(filepath.Join(dir, "recipes", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(onDisk))

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, "recipes", "abc.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, url), "deleting twice is a no-op")
	assert.NoError(t, store.Delete(ctx, "https://cdn.example.com/other.png"))
	assert.NoError(t, store.Delete(ctx, "/media/../secrets"))
}
