package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/code-geek/ai-project-template/pkg/models"
)

// livenessHandler reports the process is running
func (s *Server) livenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.health.Liveness())
}

// databaseHealthHandler reports database connectivity. Failures live
// in the body; the endpoint itself stays 200.
func (s *Server) databaseHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.health.CheckDatabase(c.Request.Context()))
}

// cacheHealthHandler reports cache connectivity via a sentinel round
// trip
func (s *Server) cacheHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.health.CheckCache(c.Request.Context()))
}

// readinessHandler aggregates all sub-checks and answers 503 when any
// of them fails.
func (s *Server) readinessHandler(c *gin.Context) {
	report := s.health.CheckReadiness(c.Request.Context())

	status := http.StatusOK
	if !report.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

func (s *Server) registerHandler(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.identity.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) loginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := s.identity.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) currentUserHandler(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	user, err := s.identity.GetUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) getProfileHandler(c *gin.Context) {
	s.currentUserHandler(c)
}

func (s *Server) updateProfileHandler(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.identity.UpdateProfile(c.Request.Context(), id, req.FirstName, req.LastName)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) changePasswordHandler(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.identity.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "password changed"})
}

func (s *Server) deleteAccountHandler(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return
	}

	if err := s.identity.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
