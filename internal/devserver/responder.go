package devserver

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// notFoundBody is sent when the fallback document itself cannot be read.
const notFoundBody = "<h1>404 Not Found</h1>"

// RewriteFunc transforms an HTML document before it is written.
type RewriteFunc func(r *http.Request, page []byte) ([]byte, error)

// Responder writes file contents and not-found documents.
type Responder struct {
	// Root is the serving root holding the fallback document.
	Root string
	// Rewrite, when set, is applied to every text/html body read from disk.
	Rewrite RewriteFunc
}

// ServeFile writes the whole file at path with status 200. If the file
// cannot be read the not-found document is served instead.
func (s Responder) ServeFile(w http.ResponseWriter, r *http.Request, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.ServeNotFound(w, r)
		return
	}

	ct := ContentType(path)
	if ct == "text/html" {
		content = s.rewrite(r, content)
	}
	write(w, http.StatusOK, ct, content)
}

// ServeNotFound writes the root 404.html with status 404, or a minimal
// literal page if that document cannot be read.
func (s Responder) ServeNotFound(w http.ResponseWriter, r *http.Request) {
	content, err := os.ReadFile(filepath.Join(s.Root, FallbackDocument))
	if err != nil {
		write(w, http.StatusNotFound, "text/html", []byte(notFoundBody))
		return
	}
	write(w, http.StatusNotFound, "text/html", s.rewrite(r, content))
}

func (s Responder) rewrite(r *http.Request, page []byte) []byte {
	if s.Rewrite == nil {
		return page
	}
	out, err := s.Rewrite(r, page)
	if err != nil {
		log.Printf("⚠ rewrite %s: %v", r.URL.Path, err)
		return page
	}
	return out
}

func write(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(body)
}
