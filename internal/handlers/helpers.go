package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

// userIDFromContext returns the authenticated caller's id set by the auth
// middleware, or "" for unauthenticated routes.
func userIDFromContext(c *gin.Context) string {
	return c.GetString("userID")
}

const requestIDContextKey = "request_id"

// requestIDFromContext returns the inbound request id, minting and caching one
// so audit events always correlate.
func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// pageParams reads page and page_size query parameters, clamping the size.
func pageParams(c *gin.Context, defaultSize, maxSize int) (page, pageSize int) {
	page = queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = queryInt(c, "page_size", defaultSize)
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}

// summariesByID bulk-loads public user summaries keyed by id.
func summariesByID(ctx context.Context, users repositories.UserRepository, ids []string) (map[string]models.UserSummary, error) {
	summaries, err := users.BulkSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.UserSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}
	return byID, nil
}
