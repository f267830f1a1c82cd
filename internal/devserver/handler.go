package devserver

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
)

// Options configures a Handler.
type Options struct {
	// Root is the serving root. Relative roots are made absolute.
	Root string
	// ContainPaths rejects request paths that escape Root.
	ContainPaths bool
	// CleanURLs enables "/page" -> "/page.html" resolution.
	CleanURLs bool
	// Rewrite is applied to HTML documents, including the custom 404 page.
	Rewrite RewriteFunc
}

// Handler serves a static site tree. It treats every request method as GET.
type Handler struct {
	resolver  Resolver
	responder Responder
}

// NewHandler creates a Handler serving opts.Root.
func NewHandler(opts Options) (*Handler, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	return &Handler{
		resolver: Resolver{
			Root:         root,
			ContainPaths: opts.ContainPaths,
			CleanURLs:    opts.CleanURLs,
		},
		responder: Responder{
			Root:    root,
			Rewrite: opts.Rewrite,
		},
	}, nil
}

// Root returns the absolute serving root.
func (h *Handler) Root() string {
	return h.resolver.Root
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, err := h.resolver.Resolve(r.URL.Path)
	if err != nil {
		if errors.Is(err, ErrOutsideRoot) {
			log.Printf("🚫 %v", err)
		}
		h.responder.ServeNotFound(w, r)
		return
	}
	h.responder.ServeFile(w, r, path)
}
