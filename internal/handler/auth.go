package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotalog/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyRequired gates mutation and index routes behind the configured api
// key, taken from the query string or the form body.
func APIKeyRequired(cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("api_key")
		if key == "" {
			key = c.PostForm("api_key")
		}
		if key == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "api_key is missing"})
			return
		}
		if !validAPIKey(cfg, key) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "api_key is invalid"})
			return
		}
		c.Next()
	}
}

// validAPIKey prefers the bcrypt hash when configured and falls back to a
// constant-time comparison against the plain key.
func validAPIKey(cfg config.AppConfig, key string) bool {
	if cfg.APIKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(key)) == nil
	}
	if cfg.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.APIKey), []byte(key)) == 1
}
