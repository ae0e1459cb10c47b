package crawl

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/campusfolio/platform/internal/records"
)

// Contract fixes the markup shape the crawler extracts candidates from.
// Tenant pages publish announcement elements matching ElementSelector and
// carry their fields in data attributes, with child-element fallbacks.
type Contract struct {
	ElementSelector string
	IDAttr          string
	TitleAttr       string
	URLAttr         string
	CategoryAttr    string
	StartAttr       string
	EndAttr         string
	TitleSelector   string
	BodySelector    string
	LinkSelector    string
}

// DefaultContract returns the extraction contract tenant pages are expected
// to follow.
func DefaultContract() Contract {
	return Contract{
		ElementSelector: ".event",
		IDAttr:          "data-id",
		TitleAttr:       "data-title",
		URLAttr:         "data-url",
		CategoryAttr:    "data-category",
		StartAttr:       "data-date-start",
		EndAttr:         "data-date-end",
		TitleSelector:   ".title",
		BodySelector:    ".body",
		LinkSelector:    "a",
	}
}

// Candidate is one announcement extracted from a tenant page, not yet
// persisted.
type Candidate struct {
	ExternalKey string
	Title       string
	Body        string
	SourceURL   string
	Category    records.Category
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// Parse extracts candidates from a fetched page. Elements missing an
// external key or a title are discarded without error: a malformed element
// must never abort the rest of the page.
func (c Contract) Parse(body []byte, pageURL string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(pageURL)

	var out []Candidate
	doc.Find(c.ElementSelector).Each(func(_ int, sel *goquery.Selection) {
		cand, ok := c.extract(sel, base, pageURL)
		if !ok {
			return
		}
		out = append(out, cand)
	})
	return out, nil
}

func (c Contract) extract(sel *goquery.Selection, base *url.URL, pageURL string) (Candidate, bool) {
	link := sel.Find(c.LinkSelector).First()
	href, _ := link.Attr("href")

	key := strings.TrimSpace(sel.AttrOr(c.IDAttr, ""))
	if key == "" {
		key = strings.TrimSpace(href)
	}
	title := strings.TrimSpace(sel.AttrOr(c.TitleAttr, ""))
	if title == "" {
		title = strings.TrimSpace(sel.Find(c.TitleSelector).First().Text())
	}
	if key == "" || title == "" {
		return Candidate{}, false
	}

	source := strings.TrimSpace(sel.AttrOr(c.URLAttr, ""))
	if source == "" {
		source = strings.TrimSpace(href)
	}
	if source == "" {
		source = pageURL
	} else if base != nil {
		if ref, err := url.Parse(source); err == nil {
			source = base.ResolveReference(ref).String()
		}
	}

	category := records.Category(strings.ToLower(strings.TrimSpace(sel.AttrOr(c.CategoryAttr, ""))))
	if !records.ValidAnnouncementCategory(category) {
		category = records.CategoryGeneral
	}

	return Candidate{
		ExternalKey: key,
		Title:       title,
		Body:        strings.TrimSpace(sel.Find(c.BodySelector).First().Text()),
		SourceURL:   source,
		Category:    category,
		StartsAt:    parseDate(sel.AttrOr(c.StartAttr, "")),
		EndsAt:      parseDate(sel.AttrOr(c.EndAttr, "")),
	}, true
}

// parseDate accepts a bare date or an RFC 3339 timestamp and returns nil for
// anything else. Source pages are not trusted to format dates correctly.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.UTC()
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}
