package testutil

import (
	"encoding/base64"
)

// PNGBytes is a PNG signature and IHDR header, enough for content sniffing
var PNGBytes = append([]byte("\x89PNG\r\n\x1a\n"), []byte("\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")...)

// PNGDataURI returns PNGBytes as a base64 data URI, the way clients upload images
func PNGDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(PNGBytes)
}
