package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"bookhub/pkg/models"
)

var (
	followersRe = regexp.MustCompile(`(?i)([\d,.]+)\s*followers`)
	viewsRe     = regexp.MustCompile(`(?i)([\d,.]+)\s*views`)
	pagesRe     = regexp.MustCompile(`(?i)([\d,.]+)\s*pages`)

	nonNumericRe = regexp.MustCompile(`[^0-9.]`)
	leadingNumRe = regexp.MustCompile(`^[^\d]*([\d]+(?:\.[\d]+)?)`)
)

// NormalizeStats converts raw extracted stats into a typed snapshot stamped
// with now. Both encodings are handled: lower-cased label -> value pairs
// (detail pages) and a single concatenated text blob (listing entries).
// Unknown labels are ignored so markup additions don't break scraping.
func NormalizeStats(pairs map[string]string, blob string, now time.Time) models.BookStats {
	st := models.BookStats{CreatedAt: now}

	for label, raw := range pairs {
		switch strings.TrimSpace(strings.ToLower(label)) {
		case "followers":
			st.Followers = int(parseNumber(raw))
		case "pages":
			st.Pages = int(parseNumber(raw))
		case "views", "total views":
			st.Views = int(parseNumber(raw))
		case "rating", "score", "overall score":
			st.Rating = parseRating(raw)
		}
	}

	if blob != "" {
		if m := followersRe.FindStringSubmatch(blob); m != nil {
			st.Followers = int(parseNumber(m[1]))
		}
		if m := viewsRe.FindStringSubmatch(blob); m != nil {
			st.Views = int(parseNumber(m[1]))
		}
		if m := pagesRe.FindStringSubmatch(blob); m != nil {
			st.Pages = int(parseNumber(m[1]))
		}
	}

	return st
}

// parseNumber strips everything but digits and decimal points (which also
// drops thousands-separator commas) and parses the rest, returning 0 on
// empty input or parse failure.
func parseNumber(s string) float64 {
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseRating reads the leading numeric token of strings like
// "4.5 out of 5" or "4.5 / 5".
func parseRating(s string) float64 {
	m := leadingNumRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return n
}
