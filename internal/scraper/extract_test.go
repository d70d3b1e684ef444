package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"bookhub/pkg/models"
)

const listingEntryHTML = `
<div class="fiction-list-item" data-id="1234">
  <figure><img src="https://cdn.example.com/covers/1234.jpg"/></figure>
  <h2 class="fiction-title"><a href="/fiction/1234/re-zero-sum">Re: Zero-Sum</a></h2>
  <span class="author">by <a href="/profile/55">QuantPenguin</a></span>
  <span class="tags">
    <a class="fiction-tag" href="/fictions/tag/litrpg">LitRPG</a>
    <a class="fiction-tag" href="/fictions/tag/litrpg">LitRPG</a>
  </span>
  <div class="stats">
    <span>1,200 Followers</span>
    <span>45,678 Views</span>
    <span>350 Pages</span>
  </div>
  <div class="description"><p>A numbers game.</p></div>
</div>`

func entryFromHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	entry := doc.Find(EntrySelector).First()
	require.Equal(t, 1, entry.Length())
	return entry
}

func TestExtractEntry(t *testing.T) {
	f := ExtractEntry(entryFromHTML(t, listingEntryHTML))

	require.Equal(t, "1234", f.ID)
	require.Equal(t, "Re: Zero-Sum", f.Title)
	require.Equal(t, "QuantPenguin", f.AuthorName)
	require.Equal(t, "https://cdn.example.com/covers/1234.jpg", f.CoverURL)
	require.Equal(t, "A numbers game.", f.Description)
	// duplicate tags from markup survive extraction
	require.Equal(t, []string{"LitRPG", "LitRPG"}, f.Tags)
	require.Contains(t, f.StatsText, "1,200 Followers")
}

func TestExtractEntryIDFromHref(t *testing.T) {
	f := ExtractEntry(entryFromHTML(t, `
<div class="fiction-list-item">
  <h2 class="fiction-title"><a href="/fiction/987/some-slug">Slugged</a></h2>
</div>`))

	require.Equal(t, "987", f.ID)
}

func TestExtractEntryDefaults(t *testing.T) {
	f := ExtractEntry(entryFromHTML(t, `<div class="fiction-list-item" data-id="99"></div>`))

	require.Equal(t, "99", f.ID)
	require.Equal(t, "", f.Title)
	require.Equal(t, models.UnknownAuthor, f.AuthorName)
	require.Equal(t, "", f.Description)
	require.Equal(t, "", f.CoverURL)
	require.Empty(t, f.Tags)
}

func TestExtractEntryAuthorFallbackOrder(t *testing.T) {
	// structural author markup wins over a stray profile anchor
	f := ExtractEntry(entryFromHTML(t, `
<div class="fiction-list-item" data-id="7">
  <a href="/profile/1">SomeCommenter</a>
  <span class="author"><a href="/profile/2">RealAuthor</a></span>
</div>`))
	require.Equal(t, "RealAuthor", f.AuthorName)

	// profile anchor is still the last resort
	f = ExtractEntry(entryFromHTML(t, `
<div class="fiction-list-item" data-id="8">
  <a href="/profile/3">OnlyLink</a>
</div>`))
	require.Equal(t, "OnlyLink", f.AuthorName)
}

func TestFictionIDFromPath(t *testing.T) {
	testCases := []struct {
		href string
		want string
	}{
		{"/fiction/12345/some-slug", "12345"},
		{"https://www.royalroad.com/fiction/42/title", "42"},
		{"/fiction/42", "42"},
		{"/profile/55", ""},
		{"/about", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.want, FictionIDFromPath(tc.href), "href=%q", tc.href)
	}
}

const detailPageHTML = `
<html>
<head><link rel="canonical" href="https://www.royalroad.com/fiction/7777/dungeon-ledger"/></head>
<body>
  <div class="fic-title">
    <h1>Dungeon Ledger</h1>
    <h4><span><a href="/profile/9">MossyKeep</a></span></h4>
  </div>
  <div class="cover-art-container"><img src="https://cdn.example.com/7777.jpg"/></div>
  <span class="tags">
    <a class="fiction-tag">Dungeon</a>
    <a class="fiction-tag">Fantasy</a>
  </span>
  <div class="description">Ledger goes deep.</div>
  <div class="fiction-stats"><ul class="list-unstyled">
    <li>Overall Score :</li><li><span class="star" data-content="4.5 / 5"></span></li>
    <li>Followers :</li><li>2,310</li>
    <li>Pages :</li><li>612</li>
    <li>Total Views :</li><li>120,450</li>
  </ul></div>
</body>
</html>`

func TestExtractDetail(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailPageHTML))
	require.NoError(t, err)

	f := ExtractDetail(doc)

	require.Equal(t, "7777", f.ID)
	require.Equal(t, "Dungeon Ledger", f.Title)
	require.Equal(t, "MossyKeep", f.AuthorName)
	require.Equal(t, "https://cdn.example.com/7777.jpg", f.CoverURL)
	require.Equal(t, "Ledger goes deep.", f.Description)
	require.Equal(t, []string{"Dungeon", "Fantasy"}, f.Tags)

	require.Equal(t, "4.5 / 5", f.StatPairs["overall score"])
	require.Equal(t, "2,310", f.StatPairs["followers"])
	require.Equal(t, "612", f.StatPairs["pages"])
	require.Equal(t, "120,450", f.StatPairs["total views"])
}
