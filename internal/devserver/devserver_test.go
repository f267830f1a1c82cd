package devserver

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeTree creates files (relative path -> content) under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func siteFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.html":        "<p>home</p>",
		"404.html":          "<p>custom 404</p>",
		"style.css":         "body{}",
		"blog/index.html":   "<p>blog</p>",
		"blog/welcome.html": "<p>welcome</p>",
		"tools/index.html":  "<p>tools</p>",
		"assets/LOGO.PNG":   "png-bytes",
		"assets/data.bin":   "\x00\x01",
		"assets/README":     "plain",
		"empty/.keep":       "",
		"odd/index.html/x":  "index is a directory",
	})
	return root
}

func TestContentType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"index.html", "text/html"},
		{"INDEX.HTML", "text/html"},
		{"style.css", "text/css"},
		{"nav.js", "text/javascript"},
		{"data.json", "application/json"},
		{"a.png", "image/png"},
		{"a.Jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.gif", "image/gif"},
		{"favicon.svg", "image/svg+xml"},
		{"favicon.ico", "image/x-icon"},
		{"archive.tar.gz", DefaultContentType},
		{"README", DefaultContentType},
		{"dir.d/file", DefaultContentType},
		{"a.\u017fvg", DefaultContentType}, // long s lowercases to itself
		{"A.SVG", "image/svg+xml"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ContentType(tt.path); got != tt.want {
				t.Errorf("ContentType(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	root := siteFixture(t)
	r := Resolver{Root: root, ContainPaths: true}

	tests := []struct {
		name    string
		reqPath string
		want    string // relative to root, empty when not found
	}{
		{"Root", "/", "index.html"},
		{"Empty path", "", "index.html"},
		{"Plain file", "/style.css", "style.css"},
		{"Directory with trailing slash", "/tools/", "tools/index.html"},
		{"Directory without trailing slash", "/blog", "blog/index.html"},
		{"Explicit extension", "/blog/welcome.html", "blog/welcome.html"},
		{"No extension guessing", "/blog/welcome", ""},
		{"Trailing slash on file", "/style.css/", ""},
		{"Directory without index", "/empty/", ""},
		{"Index is a directory", "/odd", ""},
		{"Index is a directory, trailing slash", "/odd/", ""},
		{"Missing", "/missing.html", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.reqPath)
			if tt.want == "" {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("Resolve(%q) = %q, %v; want ErrNotFound", tt.reqPath, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.reqPath, err)
			}
			want := filepath.Join(root, filepath.FromSlash(tt.want))
			if got != want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.reqPath, got, want)
			}
		})
	}
}

func TestResolveCleanURLs(t *testing.T) {
	root := siteFixture(t)
	r := Resolver{Root: root, ContainPaths: true, CleanURLs: true}

	got, err := r.Resolve("/blog/welcome")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if want := filepath.Join(root, "blog", "welcome.html"); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}

	// directories still win over their .html counterpart
	got, err = r.Resolve("/blog")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if want := filepath.Join(root, "blog", "index.html"); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}

	for _, p := range []string{"/blog/welcome/", "/blog/welcome.txt", "/nothing"} {
		if _, err := r.Resolve(p); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", p, err)
		}
	}
}

func TestResolveContainment(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "site")
	writeTree(t, parent, map[string]string{
		"secret.txt":      "secret",
		"site/index.html": "home",
	})

	contained := Resolver{Root: root, ContainPaths: true}
	if _, err := contained.Resolve("/../secret.txt"); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("contained Resolve error = %v, want ErrOutsideRoot", err)
	}
	if _, err := contained.Resolve("/a/../index.html"); err != nil {
		t.Errorf("contained Resolve of inner dot-dot: %v", err)
	}

	open := Resolver{Root: root}
	got, err := open.Resolve("/../secret.txt")
	if err != nil {
		t.Fatalf("uncontained Resolve error: %v", err)
	}
	if want := filepath.Join(parent, "secret.txt"); got != want {
		t.Errorf("uncontained Resolve = %q, want %q", got, want)
	}
}

func newTestHandler(t *testing.T, opts Options) *Handler {
	t.Helper()
	h, err := NewHandler(opts)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestHandler(t *testing.T) {
	root := siteFixture(t)
	h := newTestHandler(t, Options{Root: root, ContainPaths: true})

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"Root index", http.MethodGet, "/", 200, "text/html", "<p>home</p>"},
		{"Tools index", http.MethodGet, "/tools/", 200, "text/html", "<p>tools</p>"},
		{"Blog directory", http.MethodGet, "/blog", 200, "text/html", "<p>blog</p>"},
		{"Stylesheet", http.MethodGet, "/style.css", 200, "text/css", "body{}"},
		{"Uppercase extension", http.MethodGet, "/assets/LOGO.PNG", 200, "image/png", "png-bytes"},
		{"Unknown extension", http.MethodGet, "/assets/data.bin", 200, DefaultContentType, "\x00\x01"},
		{"No extension", http.MethodGet, "/assets/README", 200, DefaultContentType, "plain"},
		{"POST treated as GET", http.MethodPost, "/style.css", 200, "text/css", "body{}"},
		{"Clean URL not guessed", http.MethodGet, "/blog/welcome", 404, "text/html", "<p>custom 404</p>"},
		{"Missing file", http.MethodGet, "/nope.js", 404, "text/html", "<p>custom 404</p>"},
		{"Escape attempt", http.MethodGet, "/../etc/passwd", 404, "text/html", "<p>custom 404</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Values("Content-Type"); len(got) != 1 || got[0] != tt.wantType {
				t.Errorf("Content-Type = %v, want [%s]", got, tt.wantType)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestHandlerLiteralNotFound(t *testing.T) {
	root := t.TempDir()
	h := newTestHandler(t, Options{Root: root})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := rec.Body.String(); got != "<h1>404 Not Found</h1>" {
		t.Errorf("body = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestHandlerIdempotent(t *testing.T) {
	root := siteFixture(t)
	h := newTestHandler(t, Options{Root: root})

	var first []byte
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog/", nil))
		if i == 0 {
			first = rec.Body.Bytes()
			continue
		}
		if !bytes.Equal(first, rec.Body.Bytes()) {
			t.Fatalf("response %d differs: %q vs %q", i, rec.Body.Bytes(), first)
		}
	}
}

func TestHandlerRewrite(t *testing.T) {
	root := siteFixture(t)
	rewrite := func(r *http.Request, page []byte) ([]byte, error) {
		if r.URL.Path == "/tools/" {
			return nil, errors.New("boom")
		}
		return append([]byte("<!-- nav -->"), page...), nil
	}
	h := newTestHandler(t, Options{Root: root, Rewrite: rewrite})

	tests := []struct {
		target string
		want   string
	}{
		{"/", "<!-- nav --><p>home</p>"},
		{"/missing", "<!-- nav --><p>custom 404</p>"},
		{"/style.css", "body{}"},
		{"/tools/", "<p>tools</p>"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if got := rec.Body.String(); got != tt.want {
			t.Errorf("%s: body = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestLogRequests(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	root := siteFixture(t)
	h := LogRequests(newTestHandler(t, Options{Root: root}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	line := buf.String()
	if !strings.Contains(line, "GET /missing | 404 |") {
		t.Errorf("log line = %q", line)
	}
}

func TestHandlerDecodedPath(t *testing.T) {
	root := siteFixture(t)
	writeTree(t, root, map[string]string{"notes/my file.txt": "spaced"})
	h := newTestHandler(t, Options{Root: root})

	tests := []struct {
		target string
		want   string
	}{
		{"/style.css?v=1", "body{}"},
		{"/notes/my%20file.txt", "spaced"},
		{"/blog/?page=2", "<p>blog</p>"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != tt.want {
			t.Errorf("%s: got %d %q, want 200 %q", tt.target, rec.Code, rec.Body.String(), tt.want)
		}
	}
}

func TestHandlerUnreadableFiles(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for this user")
	}
	root := siteFixture(t)
	h := newTestHandler(t, Options{Root: root})

	serve := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}
	lock := func(name string) {
		p := filepath.Join(root, name)
		if err := os.Chmod(p, 0); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Chmod(p, 0o644) })
	}

	lock("style.css")
	rec := serve("/style.css")
	if rec.Code != http.StatusNotFound || rec.Body.String() != "<p>custom 404</p>" {
		t.Errorf("unreadable file: got %d %q, want 404 custom page", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", got)
	}

	lock("404.html")
	rec = serve("/style.css")
	if rec.Code != http.StatusNotFound || rec.Body.String() != "<h1>404 Not Found</h1>" {
		t.Errorf("unreadable 404.html: got %d %q, want literal 404", rec.Code, rec.Body.String())
	}
}
