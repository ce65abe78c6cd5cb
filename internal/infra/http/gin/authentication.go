package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"baraholka/internal/infra/security"
)

// AdminAuth gates the moderation REST surface behind a single bearer
// token, stored as a bcrypt hash so the plaintext never lives in config.
type AdminAuth struct {
	TokenHash string
	Hasher    security.TokenHasher
	Logger    *slog.Logger
}

func (a AdminAuth) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || a.TokenHash == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
		return
	}
	if err := a.Hasher.Compare(a.TokenHash, token); err != nil {
		if a.Logger != nil {
			a.Logger.Debug("admin token rejected", "error", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token rejected"})
		return
	}
	c.Next()
}

func extractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
