package nutrition

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// DefaultImageMIME is assumed for image payloads that arrive without a type.
const DefaultImageMIME = "image/jpeg"

// DataURI encodes data as a base64 data URI. An empty mime is sniffed from the
// bytes; anything not recognized as an image is sent as DefaultImageMIME.
func DataURI(mime string, data []byte) string {
	if mime == "" {
		mime = http.DetectContentType(data)
		if !strings.HasPrefix(mime, "image/") {
			mime = DefaultImageMIME
		}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImagePreview builds a preview URI from a base64 payload as returned by chat
// history, falling back to DefaultImageMIME. Payloads that are already data URIs
// are returned as-is.
func ImagePreview(mime, payload string) string {
	if strings.HasPrefix(payload, "data:") {
		return payload
	}
	if mime == "" {
		mime = DefaultImageMIME
	}
	return "data:" + mime + ";base64," + payload
}

// SplitDataURI splits a data URI at its first comma and extracts the MIME type
// between ':' and ';'. The payload is everything after the comma.
func SplitDataURI(uri string) (mime, payload string) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return "", uri
	}
	if _, rest, ok := strings.Cut(header, ":"); ok {
		mime, _, _ = strings.Cut(rest, ";")
	}
	return mime, payload
}
