package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when given.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDHeader)
}

func New(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), RequestID())
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/", h.Index)
	router.GET("/health", h.HealthCheck)

	tasks := router.Group("/tasks")
	tasks.POST("", h.Submit)
	tasks.GET("/current", h.Current)
	tasks.POST("/reset", h.Reset)

	exp := router.Group("/exports")
	exp.GET("/image", h.ExportImage)
	exp.GET("/document", h.ExportDocument)

	return router
}
