// Package backend is the HTTP client for the external content backend: the
// saved-article collection, the scrape trigger, and the favorites store.
// The backend owns scraping and persistence; nothing in this service does
// either.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/session"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	session    *session.Session
	limiter    *rate.Limiter
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// RPS bounds the request rate against the backend; zero means 5 rps.
	RPS float64
}

func NewClient(opts Options, sess *session.Session) *Client {
	rps := opts.RPS
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		session:    sess,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SavedArticles fetches one page of the persisted article collection.
func (c *Client) SavedArticles(ctx context.Context, limit, skip int) ([]article.RawRecord, error) {
	params := url.Values{
		"limit": {strconv.Itoa(limit)},
		"skip":  {strconv.Itoa(skip)},
	}

	var records []article.RawRecord
	if err := c.get(ctx, "/articles/saved?"+params.Encode(), false, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Scrape asks the backend to scrape fresh articles from the given websites.
func (c *Client) Scrape(ctx context.Context, p ScrapeParams) (*ScrapeResult, error) {
	params := url.Values{}
	if p.Count > 0 {
		params.Set("count", strconv.Itoa(p.Count))
	}
	if p.MaxArticles > 0 {
		params.Set("max_articles", strconv.Itoa(p.MaxArticles))
	}
	if len(p.Websites) > 0 {
		params.Set("websites", strings.Join(p.Websites, ","))
	}

	path := "/articles/scrape"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result ScrapeResult
	if err := c.get(ctx, path, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Favorites fetches the favorited article records for the current session.
func (c *Client) Favorites(ctx context.Context) ([]article.RawRecord, error) {
	var resp favoritesResponse
	if err := c.get(ctx, "/user/favorites", true, &resp); err != nil {
		return nil, err
	}
	return resp.Favorites, nil
}

// AddFavorite marks one article id as favorited. No partial-success
// semantics: any non-2xx response is a failure.
func (c *Client) AddFavorite(ctx context.Context, articleID string) error {
	body, err := json.Marshal(favoriteRequest{ArticleID: articleID})
	if err != nil {
		return fmt.Errorf("failed to encode favorite request: %w", err)
	}

	return c.do(ctx, http.MethodPost, "/user/favorites", bytes.NewReader(body), true, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, articleID string) error {
	return c.do(ctx, http.MethodDelete, "/user/favorites/"+url.PathEscape(articleID), nil, true, nil)
}

func (c *Client) get(ctx context.Context, path string, authenticated bool, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, authenticated, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, authenticated bool, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build backend request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		token := c.session.Token()
		if token == "" {
			return fmt.Errorf("%s %s requires authentication", method, path)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("Backend request completed",
		"method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned status %d for %s %s: %s",
			resp.StatusCode, method, path, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}
