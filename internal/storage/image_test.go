package storage

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a PNG signature followed by an IHDR chunk header, enough for sniffing
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), []byte("\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")...)

func TestDecodeDataURI(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	img, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, ".png", img.Extension)
	assert.Equal(t, pngBytes, img.Data)
}

func TestDecodeDataURISniffsContent(t *testing.T) {
	// declared as jpeg, actually png
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	img, err := DecodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestDecodeDataURIRejects(t *testing.T) {
	testCases := []struct {
		name string
		uri  string
	}{
		{name: "plain url", uri: "http://example.com/a.png"},
		{name: "not base64 encoded", uri: "data:image/png,rawdata"},
		{name: "broken base64", uri: "data:image/png;base64,!!!"},
		{name: "empty payload", uri: "data:image/png;base64,"},
		{name: "not an image", uri: "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURI(tt.uri)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestNewKey(t *testing.T) {
	a := NewKey("recipes", ".png")
	b := NewKey("recipes", ".png")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^recipes/[0-9a-f-]{36}\.png$`, a)
}
