// Package nav injects the shared navigation bar into HTML pages.
//
// It is the server-side counterpart of the site's nav.js: the first <nav>
// element of a page is replaced by the shared fragment (or the fragment is
// prepended to <body>), and the initial theme class is set on <body>.
package nav

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/zilpatel/site-devserver/internal/theme"
)

// ToggleID is the id of the theme toggle button in the fragment.
const ToggleID = "theme-toggle"

// Link is one entry of the navigation bar.
type Link struct {
	Label string `toml:"label" yaml:"label"`
	Href  string `toml:"href" yaml:"href"`
}

// DefaultLinks are the site's top-level sections.
var DefaultLinks = []Link{
	{Label: "Home", Href: "/"},
	{Label: "Projects", Href: "/projects"},
	{Label: "Blog", Href: "/blog"},
	{Label: "Tools", Href: "/tools"},
}

// Fragment renders the navigation markup for links.
func Fragment(links []Link) string {
	var b strings.Builder
	b.WriteString("<nav>\n  <ul>\n")
	for _, l := range links {
		fmt.Fprintf(&b, "    <li><a href=\"%s\">%s</a></li>\n",
			html.EscapeString(l.Href), html.EscapeString(l.Label))
	}
	b.WriteString("  </ul>\n")
	fmt.Fprintf(&b, "  <button id=\"%s\" aria-label=\"Toggle dark mode\"></button>\n", ToggleID)
	b.WriteString("  <script>" + toggleScript + "</script>\n")
	b.WriteString("</nav>")
	return b.String()
}

// toggleScript flips the theme class on <body> and stores the choice in the
// cookie read back by theme.CookieStore on the next page load.
var toggleScript = fmt.Sprintf(`document.getElementById(%q).addEventListener("click", function () {
    var body = document.body;
    var next = body.classList.contains(%q) ? %q : %q;
    body.classList.remove(%q, %q);
    body.classList.add(next);
    document.cookie = %q + "=" + next + "; path=/; SameSite=Lax";
  });`,
	ToggleID,
	theme.Dark, theme.Light, theme.Dark,
	theme.Dark, theme.Light,
	theme.PreferenceKey,
)

// Injector rewrites pages with a fixed navigation fragment.
type Injector struct {
	fragment string
}

// NewInjector creates an Injector for links. Empty links means DefaultLinks.
func NewInjector(links []Link) *Injector {
	if len(links) == 0 {
		links = DefaultLinks
	}
	return &Injector{fragment: Fragment(links)}
}

// Inject returns page with the navigation fragment in place and the theme
// class chosen from store and scheme applied to <body>.
func (in *Injector) Inject(page []byte, store theme.PreferenceStore, scheme theme.ColorScheme) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	if existing := doc.Find("nav").First(); existing.Length() > 0 {
		existing.ReplaceWithHtml(in.fragment)
	} else {
		doc.Find("body").PrependHtml(in.fragment)
	}

	body := doc.Find("body").First()
	theme.NewController(store, scheme, classes{body}).Apply()

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return []byte(out), nil
}

// Rewrite injects the fragment into a page served for r, taking the theme
// from the request's cookie and color-scheme client hint.
func (in *Injector) Rewrite(r *http.Request, page []byte) ([]byte, error) {
	return in.Inject(page, theme.NewCookieStore(nil, r), theme.ClientHint(r))
}

// classes adapts a goquery selection to theme.ClassList.
type classes struct {
	s *goquery.Selection
}

func (c classes) Add(class string)           { c.s.AddClass(class) }
func (c classes) Remove(names ...string)     { c.s.RemoveClass(names...) }
func (c classes) Contains(class string) bool { return c.s.HasClass(class) }
