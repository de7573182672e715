package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/code-geek/ai-project-template/internal/identity"
	"github.com/code-geek/ai-project-template/pkg/metrics"
)

// errorMiddleware drains handler errors and translates known kinds to
// HTTP statuses with the flat {"error": ...} body shape.
func (s *Server) errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		switch {
		case errors.Is(err, identity.ErrEmailTaken), errors.Is(err, identity.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, identity.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, identity.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to perform this action"})
		case errors.Is(err, identity.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			s.logger.Error("Unhandled error", zap.Error(err))
			message := "internal server error"
			if s.cfg.App.Debug {
				message = err.Error()
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": message})
		}
	}
}

// authMiddleware validates the bearer token and stores the user id in
// the request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		userID, err := s.identity.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// allowedHostsMiddleware rejects requests whose Host header is not in
// ALLOWED_HOSTS. An empty list or "*" allows everything.
func (s *Server) allowedHostsMiddleware() gin.HandlerFunc {
	allowed := s.cfg.App.AllowedHosts
	return func(c *gin.Context) {
		if len(allowed) == 0 {
			c.Next()
			return
		}

		host := c.Request.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}

		for _, candidate := range allowed {
			if candidate == "*" || strings.EqualFold(candidate, host) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid host header"})
		c.Abort()
	}
}

// metricsMiddleware records request counts and latencies per route
// template.
func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// userID extracts the authenticated user id set by authMiddleware
func userID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
