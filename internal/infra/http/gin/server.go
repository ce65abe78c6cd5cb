package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"baraholka/internal/infra/config"
	"baraholka/internal/infra/obs"
)

type EventHTTP interface {
	Ingest(c *gin.Context)
}

type PhotoHTTP interface {
	Upload(c *gin.Context)
}

type AdminHTTP interface {
	Pending(c *gin.Context)
	Approve(c *gin.Context)
	Deny(c *gin.Context)
}

type Handlers struct {
	Events    EventHTTP
	Photos    PhotoHTTP
	Admin     AdminHTTP
	AdminAuth gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Events != nil {
		api.POST("/events", h.Events.Ingest)
	}
	if h.Photos != nil {
		api.POST("/photos", h.Photos.Upload)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		if h.AdminAuth != nil {
			adminGroup.Use(h.AdminAuth)
		}
		adminGroup.GET("/moderation/pending", h.Admin.Pending)
		adminGroup.POST("/moderation/:id/approve", h.Admin.Approve)
		adminGroup.POST("/moderation/:id/deny", h.Admin.Deny)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
