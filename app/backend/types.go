package backend

import (
	"github.com/findash/articledesk/app/article"
)

// ScrapeParams are passed through to the backend scrape endpoint.
type ScrapeParams struct {
	Count       int
	MaxArticles int
	Websites    []string
}

// ScrapeResult is the backend response for a scrape request.
type ScrapeResult struct {
	Articles      []article.RawRecord `json:"articles"`
	TotalArticles int                 `json:"total_articles"`
	Message       string              `json:"message"`
}

type favoritesResponse struct {
	Favorites []article.RawRecord `json:"favorites"`
}

type favoriteRequest struct {
	ArticleID string `json:"article_id"`
}
