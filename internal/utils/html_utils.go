package utils

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DecorateHTML lazy-loads images and drops the referrer on outgoing links
// of an already sanitized fragment.
func DecorateHTML(fragment string) template.HTML {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return template.HTML(fragment)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("loading", "lazy")
		s.SetAttr("referrerpolicy", "no-referrer")
	})
	doc.Find("a[target=_blank]").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		if !strings.Contains(rel, "noopener") {
			s.SetAttr("rel", strings.TrimSpace(rel+" noopener"))
		}
	})

	// goquery 会补全 html/body，只取 body 内部
	out, err := doc.Find("body").Html()
	if err != nil {
		return template.HTML(fragment)
	}
	return template.HTML(strings.TrimSpace(out))
}
