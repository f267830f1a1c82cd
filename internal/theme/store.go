package theme

import (
	"net/http"
	"strings"
	"sync"
)

// MemoryStore is an in-memory PreferenceStore.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key. It never fails.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// CookieStore reads preferences from request cookies and writes them as
// Set-Cookie headers on the response. Either side may be nil.
type CookieStore struct {
	r *http.Request
	w http.ResponseWriter
}

// NewCookieStore returns a CookieStore reading from r and writing to w.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{r: r, w: w}
}

// Get returns the value of the request cookie named key.
func (s *CookieStore) Get(key string) (string, bool) {
	if s.r == nil {
		return "", false
	}
	c, err := s.r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Set writes a site-wide cookie, the same one the nav toggle script sets.
func (s *CookieStore) Set(key, value string) error {
	if s.w == nil {
		return nil
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClientHintHeader carries the browser's prefers-color-scheme value.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// ClientHint returns the color-scheme preference sent by the browser in
// the Sec-CH-Prefers-Color-Scheme request header.
func ClientHint(r *http.Request) ColorScheme {
	return ColorSchemeFunc(func() bool {
		v := strings.Trim(r.Header.Get(ClientHintHeader), `" `)
		return strings.EqualFold(v, "dark")
	})
}
