// Package server exposes the HTTP surface: ingestion, querying, item listing
// and a health probe.
package server

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"knowledge-inbox/internal/fetcher"
	"knowledge-inbox/internal/models"
	"knowledge-inbox/internal/rag"
	"knowledge-inbox/internal/store"
)

const maxQuestionLen = 500

type Server struct {
	rag     *rag.Service
	store   store.Store
	fetcher *fetcher.Fetcher
	topK    int
}

func New(ragSvc *rag.Service, st store.Store, f *fetcher.Fetcher, topK int) *Server {
	if topK <= 0 {
		topK = rag.DefaultTopK
	}
	return &Server{rag: ragSvc, store: st, fetcher: f, topK: topK}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.POST("/api/ingest", s.handleIngest)
	r.POST("/api/query", s.handleQuery)
	r.GET("/api/items", s.handleListItems)
	r.GET("/health", s.handleHealth)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found", "path": c.Request.URL.Path})
	})
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Msg("incoming request")
		c.Next()
	}
}

func errorJSON(c *gin.Context, status int, msg, details string) {
	c.JSON(status, gin.H{"error": msg, "details": details})
}

type ingestRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type ingestResponse struct {
	Success       bool   `json:"success"`
	ItemID        string `json:"itemId"`
	ChunksCreated int    `json:"chunksCreated"`
}

func (s *Server) handleIngest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Type == "" || req.Content == "" {
		errorJSON(c, http.StatusBadRequest, "Missing required fields", "Both type and content are required")
		return
	}
	sourceType := models.SourceType(req.Type)
	if sourceType != models.SourceNote && sourceType != models.SourceURL {
		errorJSON(c, http.StatusBadRequest, "Invalid type", `Type must be either "note" or "url"`)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		errorJSON(c, http.StatusBadRequest, "Invalid content", "Content must be a non-empty string")
		return
	}

	text := req.Content
	sourceURL := ""
	if sourceType == models.SourceURL {
		fetched, err := s.fetcher.Fetch(c.Request.Context(), req.Content)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "URL fetch failed", err.Error())
			return
		}
		text = fetched
		sourceURL = req.Content
	}

	result, err := s.rag.Ingest(c.Request.Context(), text, sourceType, sourceURL)
	if err != nil {
		if errors.Is(err, rag.ErrNoChunks) {
			errorJSON(c, http.StatusBadRequest, "Ingestion failed", err.Error())
			return
		}
		log.Error().Err(err).Msg("ingestion endpoint error")
		errorJSON(c, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	c.JSON(http.StatusCreated, ingestResponse{
		Success:       true,
		ItemID:        result.ItemID,
		ChunksCreated: result.ChunksCreated,
	})
}

type queryRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		errorJSON(c, http.StatusBadRequest, "Invalid question", "Question must be a non-empty string")
		return
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionLen {
		errorJSON(c, http.StatusBadRequest, "Question too long", "Question must be under 500 characters")
		return
	}

	result, err := s.rag.Query(c.Request.Context(), req.Question, s.topK)
	if err != nil {
		log.Error().Err(err).Msg("query endpoint error")
		errorJSON(c, http.StatusInternalServerError, "Query processing failed", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"answer":  result.Answer,
		"sources": result.Sources,
	})
}

type itemJSON struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	URL       string    `json:"url,omitempty"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleListItems(c *gin.Context) {
	items, err := s.store.ListItems(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("items endpoint error")
		errorJSON(c, http.StatusInternalServerError, "Failed to retrieve items", "")
		return
	}

	out := make([]itemJSON, len(items))
	for i, item := range items {
		out[i] = itemJSON{
			ID:        item.ID,
			Type:      string(item.SourceType),
			URL:       item.SourceURL,
			Preview:   item.Preview,
			CreatedAt: item.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": out, "total": len(out)})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
