package analytics

import (
	"math"
	"sort"

	"golang.org/x/text/cases"

	"github.com/findash/articledesk/app/article"
)

const topListSize = 3

// Stats holds cross-article summary metrics for one article snapshot. An
// empty snapshot yields the zero value, never an error.
type Stats struct {
	UniqueSourceCount int      `json:"unique_source_count"`
	UniqueAuthorCount int      `json:"unique_author_count"`
	AverageWordCount  int      `json:"average_word_count"`
	TotalKeywordCount int      `json:"total_keyword_count"`
	TotalTagCount     int      `json:"total_tag_count"`
	TopKeywords       []string `json:"top_keywords"`
	TopTags           []string `json:"top_tags"`
}

// Aggregate computes Stats in a single pass. Keyword and tag frequencies are
// keyed by their case-folded value; ties in the top lists break by
// first-seen order, independent of map iteration order.
func Aggregate(articles []article.Article) Stats {
	stats := Stats{
		TopKeywords: []string{},
		TopTags:     []string{},
	}
	if len(articles) == 0 {
		return stats
	}

	sources := make(map[string]struct{})
	authors := make(map[string]struct{})
	keywords := newFrequencyTable()
	tags := newFrequencyTable()
	totalWords := 0

	for _, a := range articles {
		sources[a.SourceLabel] = struct{}{}
		for _, author := range a.Authors {
			authors[author] = struct{}{}
		}
		for _, keyword := range a.Keywords {
			keywords.Add(keyword)
		}
		for _, tag := range a.Tags {
			tags.Add(tag)
		}
		totalWords += a.WordCount
	}

	stats.UniqueSourceCount = len(sources)
	stats.UniqueAuthorCount = len(authors)
	stats.AverageWordCount = int(math.Round(float64(totalWords) / float64(len(articles))))
	stats.TotalKeywordCount = keywords.Total()
	stats.TotalTagCount = tags.Total()
	stats.TopKeywords = keywords.Top(topListSize)
	stats.TopTags = tags.Top(topListSize)

	return stats
}

// frequencyTable counts case-folded values while remembering insertion
// order, so top-N results are deterministic under ties.
type frequencyTable struct {
	entries []frequencyEntry
	index   map[string]int
	folder  cases.Caser
	total   int
}

type frequencyEntry struct {
	key   string
	count int
}

func newFrequencyTable() *frequencyTable {
	return &frequencyTable{
		index:  make(map[string]int),
		folder: cases.Fold(),
	}
}

func (t *frequencyTable) Add(value string) {
	key := t.folder.String(value)
	t.total++

	if i, ok := t.index[key]; ok {
		t.entries[i].count++
		return
	}

	t.index[key] = len(t.entries)
	t.entries = append(t.entries, frequencyEntry{key: key, count: 1})
}

func (t *frequencyTable) Total() int {
	return t.total
}

// Top returns the n most frequent keys, descending by count. The stable sort
// over the insertion-ordered entries keeps first-seen keys ahead on ties.
func (t *frequencyTable) Top(n int) []string {
	sorted := make([]frequencyEntry, len(t.entries))
	copy(sorted, t.entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].count > sorted[j].count
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	top := make([]string, 0, len(sorted))
	for _, entry := range sorted {
		top = append(top, entry.key)
	}
	return top
}
