// Package theme implements the dark/light theme preference shared by every page.
//
// The preference is read once when a page is prepared and written on each
// toggle. Storage and the OS color-scheme query are injected so the logic
// does not depend on any particular runtime.
package theme

import "fmt"

// Mode is a theme class applied to the page.
type Mode string

// The two theme classes.
const (
	Dark  Mode = "dark-mode"
	Light Mode = "light-mode"
)

// PreferenceKey is the key under which the chosen Mode is persisted.
const PreferenceKey = "theme"

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Dark, Light:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Opposite returns the other theme.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// PreferenceStore persists string values by key.
type PreferenceStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// ColorScheme reports the operating system color-scheme preference.
type ColorScheme interface {
	PrefersDark() bool
}

// ColorSchemeFunc adapts a function to ColorScheme.
type ColorSchemeFunc func() bool

// PrefersDark calls f.
func (f ColorSchemeFunc) PrefersDark() bool { return f() }

// ClassList is the set of classes on the element carrying the theme.
type ClassList interface {
	Add(class string)
	Remove(classes ...string)
	Contains(class string) bool
}

// Controller applies and toggles the theme on a ClassList.
type Controller struct {
	store   PreferenceStore
	scheme  ColorScheme
	classes ClassList
}

// NewController creates a Controller. A nil scheme means no dark preference.
func NewController(store PreferenceStore, scheme ColorScheme, classes ClassList) *Controller {
	if scheme == nil {
		scheme = ColorSchemeFunc(func() bool { return false })
	}
	return &Controller{store: store, scheme: scheme, classes: classes}
}

// Initial returns the Mode a page should start with: the stored preference
// when it is valid, otherwise the OS preference.
func (c *Controller) Initial() Mode {
	if saved, ok := c.store.Get(PreferenceKey); ok {
		if m, err := ParseMode(saved); err == nil {
			return m
		}
	}
	if c.scheme.PrefersDark() {
		return Dark
	}
	return Light
}

// Apply sets the initial Mode on the class list and returns it. The store
// is not written.
func (c *Controller) Apply() Mode {
	m := c.Initial()
	c.set(m)
	return m
}

// Toggle switches to the other Mode and persists it.
func (c *Controller) Toggle() (Mode, error) {
	next := Dark
	if c.classes.Contains(string(Dark)) {
		next = Light
	}
	c.set(next)
	if err := c.store.Set(PreferenceKey, string(next)); err != nil {
		return next, fmt.Errorf("persist theme: %w", err)
	}
	return next, nil
}

func (c *Controller) set(m Mode) {
	c.classes.Remove(string(Dark), string(Light))
	c.classes.Add(string(m))
}
