package router

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyflow/backend/internal/handler"
	"studyflow/backend/internal/middleware"
	"studyflow/backend/web"
)

func New(
	sessionHandler *handler.SessionHandler,
	planHandler *handler.PlanHandler,
	chatHandler *handler.ChatHandler,
	eventsHandler *handler.EventsHandler,
	logger *slog.Logger,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	api.GET("/session", sessionHandler.GetState)
	api.POST("/plan", planHandler.Generate)
	api.GET("/events", eventsHandler.Stream)

	tasks := api.Group("/tasks")
	tasks.POST("", sessionHandler.QuickAdd)
	tasks.PATCH("/:id", sessionHandler.EditTask)
	tasks.PUT("/:id/duration", sessionHandler.SetDuration)
	tasks.POST("/:id/select", sessionHandler.SelectTask)
	tasks.DELETE("/:id", sessionHandler.DeleteTask)

	timer := api.Group("/timer")
	timer.POST("/start", sessionHandler.Start)
	timer.POST("/pause", sessionHandler.Pause)
	timer.POST("/reset", sessionHandler.Reset)
	timer.POST("/skip", sessionHandler.Skip)

	chat := api.Group("/chat")
	chat.GET("", chatHandler.Messages)
	chat.POST("", chatHandler.Ask)

	index, err := fs.ReadFile(web.EmbeddedFS(), "index.html")
	if err != nil {
		panic(err)
	}
	engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	engine.StaticFS("/assets", http.FS(web.Assets()))

	return engine
}
