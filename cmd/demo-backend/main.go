// demo-backend is a development stand-in for the external content backend.
// It serves the same endpoints the real backend exposes, keeping articles
// and favorites in memory and sourcing records from financial RSS feeds
// instead of a scraper. Not part of the service core.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/mmcdole/gofeed"

	"github.com/findash/articledesk/app/article"
)

type options struct {
	Port  string `long:"port" env:"PORT" default:"8000" description:"HTTP server port"`
	Feeds string `long:"feeds" env:"FEEDS" default:"https://feeds.marketwatch.com/marketwatch/topstories/" description:"Comma-separated RSS feed URLs used as the article source"`
}

type memoryBackend struct {
	mu        sync.RWMutex
	articles  []article.RawRecord
	favorites map[string]map[string]bool // token -> article id set
	parser    *gofeed.Parser
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	b := &memoryBackend{
		favorites: make(map[string]map[string]bool),
		parser:    gofeed.NewParser(),
	}

	feeds := splitList(opts.Feeds)
	count := b.loadFeeds(feeds, 20, 200)
	slog.Info("Demo backend seeded", "feeds", len(feeds), "articles", count)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/articles/saved", b.getSaved)
	r.GET("/articles/scrape", b.scrape)
	r.GET("/user/favorites", b.getFavorites)
	r.POST("/user/favorites", b.addFavorite)
	r.DELETE("/user/favorites/:id", b.removeFavorite)
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	slog.Info("Demo backend listening", "port", opts.Port)
	if err := http.ListenAndServe(":"+opts.Port, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// loadFeeds fills the in-memory collection from RSS feeds, perFeed items per
// feed, maxTotal overall.
func (b *memoryBackend) loadFeeds(feedURLs []string, perFeed, maxTotal int) int {
	var records []article.RawRecord

	for _, feedURL := range feedURLs {
		feed, err := b.parser.ParseURL(feedURL)
		if err != nil {
			slog.Warn("Failed to parse feed", "url", feedURL, "error", err)
			continue
		}

		taken := 0
		for _, item := range feed.Items {
			if taken >= perFeed || len(records) >= maxTotal {
				break
			}
			records = append(records, recordFromItem(item, feed.Title))
			taken++
		}
	}

	b.mu.Lock()
	b.articles = records
	b.mu.Unlock()

	return len(records)
}

func recordFromItem(item *gofeed.Item, source string) article.RawRecord {
	record := article.RawRecord{
		ID:     article.NewFlexID(uuid.NewString()),
		Link:   item.Link,
		Title:  item.Title,
		Text:   strings.TrimSpace(item.Content + " " + item.Description),
		Tags:   article.StringList(item.Categories),
		Source: source,
	}

	if item.PublishedParsed != nil {
		record.PublishDate = article.FlexString(item.PublishedParsed.Format(time.RFC3339))
	}
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			record.Authors = append(record.Authors, author.Name)
		}
	}
	if item.Image != nil {
		record.Thumbnail = item.Image.URL
	}

	return record
}

func (b *memoryBackend) getSaved(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	skip := intQuery(c, "skip", 0)

	b.mu.RLock()
	defer b.mu.RUnlock()

	if skip >= len(b.articles) {
		c.JSON(http.StatusOK, []article.RawRecord{})
		return
	}

	end := min(skip+limit, len(b.articles))
	c.JSON(http.StatusOK, b.articles[skip:end])
}

// scrape re-reads the configured feeds, honoring the same parameters the
// real scrape endpoint takes. The websites parameter is treated as a feed
// URL list.
func (b *memoryBackend) scrape(c *gin.Context) {
	count := intQuery(c, "count", 5)
	maxArticles := intQuery(c, "max_articles", 1500)

	feeds := splitList(c.Query("websites"))
	if len(feeds) > 0 {
		b.loadFeeds(feeds, count, maxArticles)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"articles":       b.articles,
		"total_articles": len(b.articles),
		"message":        fmt.Sprintf("Returned %d articles", len(b.articles)),
	})
}

func (b *memoryBackend) getFavorites(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	favorited := []article.RawRecord{}
	for _, record := range b.articles {
		if b.favorites[token][article.ResolveDBID(record)] {
			favorited = append(favorited, record)
		}
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorited})
}

func (b *memoryBackend) addFavorite(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}

	var payload struct {
		ArticleID string `json:"article_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.ArticleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "article_id is required"})
		return
	}

	b.mu.Lock()
	if b.favorites[token] == nil {
		b.favorites[token] = make(map[string]bool)
	}
	b.favorites[token][payload.ArticleID] = true
	b.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (b *memoryBackend) removeFavorite(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}

	id := c.Param("id")

	b.mu.Lock()
	delete(b.favorites[token], id)
	b.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return "", false
	}
	return token, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, entry := range strings.Split(raw, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
