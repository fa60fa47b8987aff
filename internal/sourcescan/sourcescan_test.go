package sourcescan

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestScan_HTMLVersion(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{name: "HTML5", src: `<!DOCTYPE html><html></html>`, expected: "HTML5"},
		{name: "HTML5 uppercase", src: `<!DOCTYPE HTML><html></html>`, expected: "HTML5"},
		{
			name:     "HTML 4.01",
			src:      `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd"><html></html>`,
			expected: "HTML 4.01",
		},
		{
			name:     "XHTML 1.0",
			src:      `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd"><html></html>`,
			expected: "XHTML 1.0",
		},
		{
			name:     "XHTML 1.1",
			src:      `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd"><html></html>`,
			expected: "XHTML 1.1",
		},
		{name: "fragment", src: `<div>hi</div>`, expected: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Scan(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.HTMLVersion != tt.expected {
				t.Errorf("HTMLVersion = %q, want %q", p.HTMLVersion, tt.expected)
			}
		})
	}
}

func TestScan_Markup(t *testing.T) {
	src := `<!DOCTYPE html>
<html lang="pt-BR">
<head><title>  Loja  </title></head>
<body>
  <h1>Produtos</h1>
  <h2>Ofertas</h2><h2>Novidades</h2>
  <img src="a.png">
  <img src="b.png" alt="">
  <IMG SRC="c.png" ALT="Logo"/>
  <form><input type="text"><select></select><textarea></textarea></form>
  <a href="/x">saiba mais</a>
  <script>document.title = "x"</script>
</body>
</html>`

	p, err := Scan(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Title != "Loja" {
		t.Errorf("Title = %q, want %q", p.Title, "Loja")
	}
	if !p.HasLang {
		t.Error("HasLang = false, want true")
	}
	if p.Headings["h1"] != 1 || p.Headings["h2"] != 2 {
		t.Errorf("Headings = %v, want h1:1 h2:2", p.Headings)
	}
	if p.Images != 3 {
		t.Errorf("Images = %d, want 3", p.Images)
	}
	if p.ImagesMissingAlt != 1 {
		t.Errorf("ImagesMissingAlt = %d, want 1", p.ImagesMissingAlt)
	}
	if p.FormControls != 3 {
		t.Errorf("FormControls = %d, want 3", p.FormControls)
	}
	if p.Links != 1 || p.Scripts != 1 {
		t.Errorf("Links = %d, Scripts = %d, want 1 and 1", p.Links, p.Scripts)
	}
	if p.Lines != strings.Count(src, "\n")+1 {
		t.Errorf("Lines = %d", p.Lines)
	}
}

func TestScan_NonMarkup(t *testing.T) {
	p, err := Scan("body { color: red; }\n.btn:focus { outline: none; }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Elements != 0 {
		t.Errorf("Elements = %d, want 0", p.Elements)
	}
	if p.Lines != 2 {
		t.Errorf("Lines = %d, want 2", p.Lines)
	}
}

func TestProfile_LogValue(t *testing.T) {
	p, err := Scan(`<img src="x.png">`)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("scan", slog.Any("source", p))

	if !strings.Contains(buf.String(), `"images_missing_alt":1`) {
		t.Errorf("log line missing profile group: %s", buf.String())
	}
}
