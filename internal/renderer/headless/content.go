package headless

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageScript is one <script> element in document order.
type pageScript struct {
	src    string // resolved against the page base; empty for inline scripts
	source string
}

type page struct {
	title   string
	scripts []pageScript
}

// parsePage extracts the title and executable scripts from markup.
func parsePage(markup, base string) (page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return page{}, err
	}

	p := page{title: strings.TrimSpace(doc.Find("title").First().Text())}
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if t, ok := s.Attr("type"); ok && !isJavaScript(t) {
			return
		}
		if src, ok := s.Attr("src"); ok && strings.TrimSpace(src) != "" {
			p.scripts = append(p.scripts, pageScript{src: resolveRef(base, strings.TrimSpace(src))})
			return
		}
		p.scripts = append(p.scripts, pageScript{source: s.Text()})
	})
	return p, nil
}

func isJavaScript(scriptType string) bool {
	switch strings.ToLower(strings.TrimSpace(scriptType)) {
	case "", "text/javascript", "application/javascript", "module":
		return true
	}
	return false
}

func resolveRef(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func schemeOf(uri string) string {
	if i := strings.Index(uri, "://"); i > 0 {
		return strings.ToLower(uri[:i])
	}
	return ""
}
