package analytics

import (
	"sort"

	"github.com/findash/articledesk/app/article"
)

// Rank orders articles by publish recency, newest first, and truncates to
// limit. Articles without a publish date sort as the oldest; relative order
// inside the undated group (and between equal timestamps) is preserved.
func Rank(articles []article.Article, limit int) []article.Article {
	ranked := make([]article.Article, len(articles))
	copy(ranked, articles)

	sort.SliceStable(ranked, func(i, j int) bool {
		return publishedMillis(ranked[i]) > publishedMillis(ranked[j])
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func publishedMillis(a article.Article) int64 {
	if a.PublishedAt == nil {
		return 0
	}
	return a.PublishedAt.UnixMilli()
}
