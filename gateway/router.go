package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"snappy/auth"
	"snappy/contract"
	"snappy/moderation"
	"snappy/runtime"
)

// RouterConfig carries the transport knobs the router needs.
type RouterConfig struct {
	SendBufferSize int
	AllowedOrigin  string
}

// NewRouter wires every HTTP and websocket route. The relay endpoint sits
// behind the same token check as the REST routes: identity is verified
// once at the session boundary, then trusted by the relay.
func NewRouter(
	handlers *Handlers,
	presence contract.IPresence,
	moderator moderation.Moderator,
	cfg RouterConfig,
	log *slog.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/healthz", handlers.Health)

	api := router.Group("/api")
	{
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)

		protected := api.Group("", auth.Middleware())
		protected.GET("/users", handlers.ListContacts)
		protected.POST("/users/avatar", handlers.SetAvatar)
		protected.POST("/messages", handlers.PostMessage)
		protected.POST("/messages/history", handlers.GetHistory)
		protected.GET("/messages/recent", handlers.RecentMessages)
		protected.GET("/messages/search", handlers.Search)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigin),
	}
	router.GET("/ws", auth.Middleware(), func(c *gin.Context) {
		serveWs(c, upgrader, presence, moderator, cfg.SendBufferSize, log)
	})

	return router
}

// serveWs upgrades the connection and runs its pumps. The read pump runs
// in the handler's goroutine; the write pump gets its own.
func serveWs(
	c *gin.Context,
	upgrader websocket.Upgrader,
	presence contract.IPresence,
	moderator moderation.Moderator,
	sendBufferSize int,
	log *slog.Logger,
) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Websocket upgrade failed", "err", err)
		return
	}

	session := NewSession(conn, sendBufferSize, log)
	relay := runtime.NewRelay(presence, moderator, session, log)

	go session.WritePump()
	session.ReadPump(relay)
}

func originChecker(allowed string) func(r *http.Request) bool {
	if allowed == "" {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return r.Header.Get("Origin") == allowed
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
