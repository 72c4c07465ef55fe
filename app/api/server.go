package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/findash/articledesk/app/metrics"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())
	r.Use(observeRequests())

	// CORS middleware so the dashboard UI can call from another origin
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes. Read endpoints are
// open; mutating endpoints require the API access key when one is set.
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/articles", handler.GetArticles)
	r.GET("/articles/stats", handler.GetStats)
	r.GET("/articles/timeline", handler.GetTimeline)
	r.GET("/favorites", handler.GetFavorites)

	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mutating := r.Group("/")
	if apiAccessKey != "" {
		mutating.Use(authMiddleware(apiAccessKey))
	}
	{
		mutating.POST("/articles/refresh", handler.RefreshArticles)
		mutating.POST("/articles/scrape", handler.ScrapeArticles)
		mutating.POST("/favorites/all", handler.FavoriteAllVisible)
		mutating.POST("/favorites/:id", handler.ToggleFavorite)
		mutating.DELETE("/favorites/:id", handler.ToggleFavorite)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "Article Desk",
			"description": "Financial article normalization, analytics, and favorites for the dashboard UI",
			"endpoints": map[string]string{
				"articles":  "/articles?q=<query>",
				"stats":     "/articles/stats",
				"timeline":  "/articles/timeline?limit=<n>",
				"favorites": "/favorites",
				"refresh":   "/articles/refresh (POST)",
				"scrape":    "/articles/scrape (POST)",
				"health":    "/health",
				"metrics":   "/metrics",
			},
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware guards mutating endpoints with the X-API-Key header.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key"})
			return
		}
		c.Next()
	}
}

func observeRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
