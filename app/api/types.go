package api

import (
	"context"

	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/backend"
)

// ArticleStore is the read/refresh surface the handlers need.
type ArticleStore interface {
	Articles() []article.Article
	Count() int
	Refresh(ctx context.Context) (int, error)
	Scrape(ctx context.Context, params backend.ScrapeParams) (int, string, error)
}

// FavoriteReconciler is the favorite surface the handlers need.
type FavoriteReconciler interface {
	IsFavorited(dbID string) bool
	FavoritedIDs() []string
	Toggle(ctx context.Context, dbID string) error
	FavoriteAll(ctx context.Context, dbIDs []string) (int, error)
	Load(ctx context.Context) error
}

type Handler struct {
	store         ArticleStore
	favorites     FavoriteReconciler
	classifier    *article.Classifier
	timelineLimit int

	// scrapeWebsites is the default site list when a scrape request
	// names none.
	scrapeWebsites []string
}

// articleView is one canonical article as served to the UI, with its source
// meta and favorite capability attached.
type articleView struct {
	article.Article
	SourceMeta  article.SourceMeta `json:"source_meta"`
	CanFavorite bool               `json:"can_favorite"`
	Favorited   bool               `json:"favorited"`
}
