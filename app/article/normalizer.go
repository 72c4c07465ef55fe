package article

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// SyntheticKeyPrefix prefixes positional identity keys for records
	// without a link. Keys built this way are stable within one applied
	// snapshot but not across independent fetches.
	SyntheticKeyPrefix = "article-"

	// SummaryMaxLen is the rune length of a summary including the ellipsis.
	SummaryMaxLen = 220

	summaryEllipsis = "..."

	NoSummaryPlaceholder   = "No summary available."
	UnknownSource          = "Unknown source"
	UnknownPublishDate     = "Unknown publish date"
	UntitledPlaceholder    = "Untitled article"
	publishedDisplayLayout = "Jan 2, 2006 3:04 PM"
)

// publishDateLayouts covers the formats the content backend and the scraper
// are known to emit.
var publishDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
}

// Normalize converts one raw record into a canonical Article. It is a pure
// function: the same raw input and fallback index always yield the same
// article. It never fails; malformed sub-fields degrade to documented
// defaults instead of aborting the whole record.
func Normalize(raw RawRecord, fallbackIndex int) Article {
	a := Article{
		IdentityKey: identityKey(raw, fallbackIndex),
		DBID:        ResolveDBID(raw),
		Title:       normalizeTitle(raw.Title),
		SourceLabel: sourceLabel(raw),
		Keywords:    cleanList(raw.Keywords),
		Tags:        cleanList(raw.Tags),
		Authors:     normalizeAuthors(raw),
		URL:         raw.Link,
		Thumbnail:   raw.Thumbnail,
		BodyText:    raw.Text,
		WordCount:   len(strings.Fields(raw.Text)),
	}

	a.PublishedAt, a.PublishedDisplay = normalizePublishDate(raw.PublishDate.String())
	a.Summary = summarize(raw.Text)

	return a
}

func identityKey(raw RawRecord, fallbackIndex int) string {
	if link := strings.TrimSpace(raw.Link); link != "" {
		return link
	}
	return fmt.Sprintf("%s%d", SyntheticKeyPrefix, fallbackIndex)
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return UntitledPlaceholder
	}
	return title
}

// sourceLabel prefers the explicit source field, then the link hostname with
// a leading "www." stripped, then the unknown-source placeholder. A link
// that does not parse as a URL falls through without error.
func sourceLabel(raw RawRecord) string {
	if source := strings.TrimSpace(raw.Source); source != "" {
		return source
	}

	if raw.Link != "" {
		if u, err := url.Parse(raw.Link); err == nil && u.Hostname() != "" {
			return strings.TrimPrefix(u.Hostname(), "www.")
		}
	}

	return UnknownSource
}

// normalizePublishDate returns the parsed timestamp and its display string.
// An absent value yields the unknown-date placeholder; an unparseable value
// yields the raw string so callers still see the original data.
func normalizePublishDate(raw string) (*time.Time, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, UnknownPublishDate
	}

	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return &t, t.Format(publishedDisplayLayout)
		}
	}

	return nil, trimmed
}

// summarize collapses whitespace runs, trims, and truncates to SummaryMaxLen
// runes with a trailing ellipsis. An empty body yields the no-summary
// placeholder.
func summarize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return NoSummaryPlaceholder
	}

	runes := []rune(collapsed)
	if len(runes) <= SummaryMaxLen {
		return collapsed
	}
	return string(runes[:SummaryMaxLen-len(summaryEllipsis)]) + summaryEllipsis
}

func normalizeAuthors(raw RawRecord) []string {
	if len(raw.Authors) > 0 {
		return cleanList(raw.Authors)
	}
	return cleanList(raw.Author)
}

// cleanList drops empty entries while preserving order. Duplicates are kept;
// deduplication is not this layer's concern.
func cleanList(values StringList) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// unwantedBodies marks scraped placeholder bodies that carry no article
// content. Mirrors the scrape post-filter applied upstream.
var unwantedBodies = map[string]struct{}{
	"Get App for Better Experience":                       {},
	"Log onto movie.ndtv.com for more celebrity pictures": {},
	"No description available.":                           {},
}

// Droppable reports whether a scraped record is a known placeholder that
// should not enter a snapshot: missing title or body, a boilerplate body,
// or a hardware-ad title.
func Droppable(raw RawRecord) bool {
	title := strings.TrimSpace(raw.Title)
	text := strings.TrimSpace(raw.Text)
	if title == "" || text == "" {
		return true
	}
	if _, ok := unwantedBodies[text]; ok {
		return true
	}

	lower := strings.ToLower(title)
	for _, brand := range []string{"dell", "hp", "acer", "lenovo"} {
		if strings.Contains(lower, brand) {
			return true
		}
	}
	return false
}
