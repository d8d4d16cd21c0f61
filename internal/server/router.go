package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the middleware chain and the /api routes.
func NewRouter(h *Handler, origins []string, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(CORS(origins))
	r.Use(RequestLogger(log))
	r.Use(ErrorHandler(log))

	api := r.Group("/api")
	api.GET("/healthz", h.Health)
	api.GET("/dictionary", h.ListDictionary)
	api.GET("/dictionary/:char", h.GetEntry)
	api.POST("/annotate", h.Annotate)

	sessions := api.Group("/sessions")
	sessions.POST("", h.CreateSession)

	s := sessions.Group("/:id")
	s.GET("", h.GetSession)
	s.DELETE("", h.DeleteSession)
	s.PUT("/text", h.SetText)
	s.POST("/select", h.Select)
	s.POST("/events", h.Event)
	s.POST("/mastered/:char", h.ToggleMastered)
	s.GET("/vocab", h.ListVocab)
	s.POST("/vocab/:char", h.AddVocab)
	s.DELETE("/vocab/:char", h.RemoveVocab)
	s.POST("/practice/next", h.NextQuestion)
	s.POST("/practice/answer", h.Answer)
	s.POST("/import", h.Import)
	s.GET("/export", h.Export)
	s.GET("/speech", h.Speech)
	s.GET("/stats", h.Stats)

	return r
}
