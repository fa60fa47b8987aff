// Package sourcescan computes a cheap structural profile of submitted source
// code. The profile is attached to logs and spans; it never influences the
// analysis itself.
package sourcescan

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

// Profile summarises the markup found in a source snippet.
type Profile struct {
	Bytes            int
	Lines            int
	HTMLVersion      string
	Elements         int
	Headings         map[string]int
	Images           int
	ImagesMissingAlt int
	FormControls     int
	Links            int
	Scripts          int
	HasLang          bool
	Title            string
}

// Scan performs a single pass over src with the HTML tokenizer. Source that
// is not HTML (plain CSS or JavaScript) yields a profile with no elements.
func Scan(src string) (*Profile, error) {
	p := &Profile{
		Bytes:       len(src),
		Lines:       strings.Count(src, "\n") + 1,
		HTMLVersion: "Unknown",
		Headings:    map[string]int{},
	}

	z := html.NewTokenizer(strings.NewReader(src))
	var inTitle bool

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return p, nil
			}
			return nil, z.Err()

		case html.DoctypeToken:
			p.HTMLVersion = detectHTMLVersion(z.Token())

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			tag := string(tn)
			p.Elements++

			var attrs map[string]string
			if hasAttr {
				attrs = collectAttrs(z)
			}

			switch {
			case tag == "title":
				inTitle = true

			case tag == "html":
				p.HasLang = strings.TrimSpace(attrs["lang"]) != ""

			case isHeading(tag):
				p.Headings[tag]++

			case tag == "img":
				p.Images++
				if _, ok := attrs["alt"]; !ok {
					p.ImagesMissingAlt++
				}

			case tag == "input", tag == "select", tag == "textarea":
				p.FormControls++

			case tag == "a":
				p.Links++

			case tag == "script":
				p.Scripts++
			}

		case html.TextToken:
			if inTitle {
				p.Title = strings.TrimSpace(string(z.Text()))
				inTitle = false
			}

		case html.EndTagToken:
			tn, _ := z.TagName()
			if string(tn) == "title" {
				inTitle = false
			}
		}
	}
}

// LogValue lets a profile be logged as a single group attribute.
func (p *Profile) LogValue() slog.Value {
	if p == nil {
		return slog.Value{}
	}
	return slog.GroupValue(
		slog.Int("bytes", p.Bytes),
		slog.Int("lines", p.Lines),
		slog.String("html_version", p.HTMLVersion),
		slog.Int("elements", p.Elements),
		slog.Int("images", p.Images),
		slog.Int("images_missing_alt", p.ImagesMissingAlt),
		slog.Int("form_controls", p.FormControls),
		slog.Bool("has_lang", p.HasLang),
	)
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// collectAttrs drains the tokenizer's attributes for the current tag. Keys
// are lowercased by the tokenizer.
func collectAttrs(z *html.Tokenizer) map[string]string {
	attrs := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		attrs[string(key)] = string(val)
		if !more {
			return attrs
		}
	}
}

// doctypes maps a lowercased public identifier fragment to its name, most
// specific first.
var doctypes = []struct{ marker, name string }{
	{"xhtml basic 1.1", "XHTML 1.1"},
	{"xhtml 1.1", "XHTML 1.1"},
	{"xhtml 1.0", "XHTML 1.0"},
	{"html 4.01", "HTML 4.01"},
}

// detectHTMLVersion names the doctype. A doctype without a public
// identifier is HTML5.
func detectHTMLVersion(token html.Token) string {
	data := strings.ToLower(token.Data)
	if !strings.Contains(data, "public") {
		return "HTML5"
	}
	for _, d := range doctypes {
		if strings.Contains(data, d.marker) {
			return d.name
		}
	}
	return "Unknown"
}
