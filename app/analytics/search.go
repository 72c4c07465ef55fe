package analytics

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/findash/articledesk/app/article"
)

var searchFolder = cases.Fold()

// Filter returns the articles whose searchable fields contain the query as a
// case-insensitive substring, preserving input order. A blank query returns
// the input unchanged. No tokenization, no ranking.
func Filter(articles []article.Article, query string) []article.Article {
	query = strings.TrimSpace(query)
	if query == "" {
		return articles
	}

	needle := searchFolder.String(query)

	matched := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if matchesQuery(a, needle) {
			matched = append(matched, a)
		}
	}
	return matched
}

// matchesQuery checks each candidate field independently; one hit is enough.
func matchesQuery(a article.Article, needle string) bool {
	candidates := []string{
		a.Title,
		a.BodyText,
		a.SourceLabel,
		strings.Join(a.Authors, " "),
		strings.Join(a.Keywords, " "),
		strings.Join(a.Tags, " "),
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if strings.Contains(searchFolder.String(candidate), needle) {
			return true
		}
	}
	return false
}
