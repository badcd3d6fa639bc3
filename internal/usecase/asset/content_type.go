package asset

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var extContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"eps":  "application/postscript",
	"ai":   "application/illustrator",
	"cdr":  "application/x-coreldraw",
}

// contentType resolves by extension first and falls back to sniffing the
// content. Parameters such as charset are dropped.
func contentType(name string, data []byte) string {
	if ct, ok := extContentTypes[strings.ToLower(extension(name))]; ok {
		return ct
	}

	ct, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")

	return strings.TrimSpace(ct)
}
