package http

import (
	"context"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"voicebridge/internal/adapters/signal"
	"voicebridge/internal/app"
	"voicebridge/internal/audio"
	"voicebridge/internal/config"
	"voicebridge/internal/domain"
	"voicebridge/internal/pipeline"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// Deps bundles everything the router hands out to its handlers.
type Deps struct {
	Registry   *app.Registry
	Dispatcher *app.Dispatcher
	Worker     *app.Worker
	Clips      *audio.Store
	Provider   pipeline.Provider
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("VoiceBridgeSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	ctrl := signal.NewSignalWSController(deps.Registry, deps.Dispatcher, deps.Clips, signal.Options{
		ReadLimit:       cfg.ReadLimit,
		PingPeriod:      cfg.PingPeriod,
		DefaultLanguage: domain.Language(cfg.DefaultLanguage),
	})
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	h := &apiHandlers{
		registry: deps.Registry,
		worker:   deps.Worker,
		clips:    deps.Clips,
		provider: deps.Provider,
		timeout:  cfg.StageTimeout,
	}
	if h.timeout <= 0 {
		h.timeout = 30 * time.Second
	}

	api.GET("/health", h.health)
	api.GET("/rooms", h.rooms)
	api.GET("/rooms/:id", h.roomInfo)
	api.POST("/translate", h.translate)

	return r
}
