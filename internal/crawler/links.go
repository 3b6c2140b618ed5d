package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/v0xg/a11yscan/internal/frontier"
)

// ExtractLinks returns the distinct absolute http(s) links in a rendered
// document that point at seedHost's site. Relative hrefs resolve against
// <base href> when present, else pageURL. Fragments are dropped.
func ExtractLinks(html, pageURL, seedHost string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	seen := make(map[string]struct{})
	links := make([]string, 0)
	doc.Find("a[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		u, err := base.Parse(href)
		if err != nil {
			return
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		if !frontier.SameSite(u.Hostname(), seedHost) {
			return
		}
		u.Fragment = ""
		u.RawFragment = ""

		key := frontier.Normalize(u.String())
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, u.String())
	})

	return links, nil
}
