package storage

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidImage is returned for payloads that are not base64 data URIs of an image
var ErrInvalidImage = errors.New("upload a valid image")

// Image is a decoded upload
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// IsDataURI reports whether s looks like an inline upload rather than a URL
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI decodes "data:image/png;base64,...". The declared media type is
// ignored; the content type is sniffed from the bytes and must be an image.
func DecodeDataURI(uri string) (*Image, error) {
	if !IsDataURI(uri) {
		return nil, ErrInvalidImage
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidImage
	}

	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, ErrInvalidImage
	}
	return &Image{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil
}
