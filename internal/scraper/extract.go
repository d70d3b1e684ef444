package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookhub/pkg/models"
)

// Selectors for the two markup contexts we scrape: listing entries
// (fiction-list pages, search results) and fiction detail pages.
const (
	EntrySelector = "div.fiction-list-item"

	entryTitleSel = "h2.fiction-title a"
	entryCoverSel = "figure img"
	entryDescSel  = "div.description"
	entryStatsSel = "div.stats"

	tagLinkSel = "a.fiction-tag"

	detailTitleSel = "div.fic-title h1"
	detailCoverSel = "div.cover-art-container img"
	detailDescSel  = "div.description"
	detailStatsSel = "div.fiction-stats li"
)

// Fields is the best-effort raw output of extraction for one entry.
// Missing fields degrade to "" / nil here; typed defaults are applied by
// the normalizer and assembler.
type Fields struct {
	ID          string
	Title       string
	AuthorName  string
	Description string
	CoverURL    string
	Tags        []string
	StatPairs   map[string]string // lower-cased label -> raw value text
	StatsText   string            // concatenated stats blob (listing style)
}

// authorStrategies is the ordered fallback chain for author extraction,
// tried left to right until one yields non-empty trimmed text. Structural
// listing markup comes before generic profile-anchor matches, which can
// catch unrelated links elsewhere in the entry.
var authorStrategies = []func(*goquery.Selection) string{
	func(s *goquery.Selection) string { return s.Find("span.author a").First().Text() },
	func(s *goquery.Selection) string { return s.Find("h4 span a").First().Text() },
	func(s *goquery.Selection) string {
		return strings.TrimPrefix(strings.TrimSpace(s.Find("span.author").First().Text()), "by ")
	},
	func(s *goquery.Selection) string { return s.Find("a[href^='/profile/']").First().Text() },
}

func extractAuthor(s *goquery.Selection) string {
	for _, strategy := range authorStrategies {
		if name := strings.TrimSpace(strategy(s)); name != "" {
			return name
		}
	}
	return models.UnknownAuthor
}

// textOr returns the trimmed text of the first match of selector, or def.
func textOr(s *goquery.Selection, selector, def string) string {
	if t := strings.TrimSpace(s.Find(selector).First().Text()); t != "" {
		return t
	}
	return def
}

// attrOr returns the named attribute of the first match of selector, or def.
func attrOr(s *goquery.Selection, selector, attr, def string) string {
	if v, ok := s.Find(selector).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func extractTags(s *goquery.Selection) []string {
	var tags []string
	s.Find(tagLinkSel).Each(func(_ int, a *goquery.Selection) {
		if t := strings.TrimSpace(a.Text()); t != "" {
			// duplicates from markup are preserved on purpose
			tags = append(tags, t)
		}
	})
	return tags
}

// FictionIDFromPath pulls the numeric fiction id out of an href like
// "/fiction/12345/some-slug" (absolute URLs work too). Returns "" when the
// path does not carry one.
func FictionIDFromPath(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "fiction" || parts[1] == "" {
		return ""
	}
	return parts[1]
}

// ExtractEntry maps one listing entry node into Fields. Pure: no fetching,
// no defaults beyond the author sentinel.
func ExtractEntry(s *goquery.Selection) Fields {
	id := strings.TrimSpace(s.AttrOr("data-id", ""))
	if id == "" {
		id = FictionIDFromPath(attrOr(s, entryTitleSel, "href", ""))
	}

	return Fields{
		ID:          id,
		Title:       textOr(s, entryTitleSel, ""),
		AuthorName:  extractAuthor(s),
		Description: textOr(s, entryDescSel, ""),
		CoverURL:    attrOr(s, entryCoverSel, "src", ""),
		Tags:        extractTags(s),
		StatsText:   strings.TrimSpace(s.Find(entryStatsSel).Text()),
	}
}

// ExtractDetail maps a fiction detail page into Fields. Stats come as
// label/value pairs from the fiction-stats list, where labels end in ":"
// and the value is the following list item.
func ExtractDetail(doc *goquery.Document) Fields {
	root := doc.Selection

	id := FictionIDFromPath(attrOr(root, "link[rel='canonical']", "href", ""))
	if id == "" {
		id = FictionIDFromPath(attrOr(root, "meta[property='og:url']", "content", ""))
	}

	return Fields{
		ID:          id,
		Title:       textOr(root, detailTitleSel, ""),
		AuthorName:  extractAuthor(root),
		Description: textOr(root, detailDescSel, ""),
		CoverURL:    attrOr(root, detailCoverSel, "src", ""),
		Tags:        extractTags(root),
		StatPairs:   extractStatPairs(root),
	}
}

func extractStatPairs(root *goquery.Selection) map[string]string {
	pairs := make(map[string]string)
	label := ""
	root.Find(detailStatsSel).Each(func(_ int, li *goquery.Selection) {
		text := strings.TrimSpace(li.Text())
		if strings.HasSuffix(text, ":") {
			label = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(text, ":")))
			return
		}
		if label == "" {
			return
		}
		if text == "" {
			// score values render as a star widget; the number lives in
			// its aria-label / data-content attribute
			text = attrOr(li, "span", "data-content", "")
			if text == "" {
				text = attrOr(li, "span", "aria-label", "")
			}
		}
		pairs[label] = text
		label = ""
	})
	return pairs
}
