// Package http wires the gin router: REST endpoints plus the websocket
// upgrade path.
package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pvolkov/babelroom/internal/adapters/signal"
	"github.com/pvolkov/babelroom/internal/auth"
	"github.com/pvolkov/babelroom/internal/config"
)

// ClientTokenMiddleware tags every browser with a stable cookie token, used
// for log correlation across reconnects.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, h *Handlers, authMgr *auth.Manager, ws *signal.Controller) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Server.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Server.Secret))
	r.Use(sessions.Sessions("BabelSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.Server.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.Server.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.Server.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", authMgr.Middleware())
	authed.GET("/rooms", h.ListRooms)
	authed.POST("/rooms", h.CreateRoom)
	authed.POST("/rooms/join", h.JoinRoom)
	authed.GET("/rooms/:id/messages", h.ListMessages)
	authed.GET("/rooms/:id/members", h.ListRoomMembers)
	authed.PUT("/me/language", h.UpdateLanguage)
	authed.POST("/translate", h.Translate)
	authed.POST("/detect-language", h.DetectLanguage)

	authed.GET("/ws", func(c *gin.Context) {
		ws.HandleWS(ctx, c)
	})

	return r
}
