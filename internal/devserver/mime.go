// Package devserver implements a local development file server that mimics
// static hosting: directory index documents, a custom 404 page and
// extension-based content types.
package devserver

import (
	"path/filepath"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultContentType is used for files whose extension is not in the MIME table.
const DefaultContentType = "application/octet-stream"

// mimeTypes maps a lowercase extension (with its leading dot) to a content type.
// It is never modified after package initialization.
var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ContentType returns the content type for path based on its extension.
// Extensions are lowercased before lookup; no wider case folding applies.
func ContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return DefaultContentType
	}
	// Caser is stateful, so one per call
	if ct, ok := mimeTypes[cases.Lower(language.Und).String(ext)]; ok {
		return ct
	}
	return DefaultContentType
}
