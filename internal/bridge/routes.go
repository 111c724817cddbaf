package bridge

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// Fixed response bodies.
const (
	bodyBadRequest  = "bad request"
	bodyUnavailable = "UNAVAILABLE"
	bodyNotFound    = "not found"
	bodyInternal    = "autopilot internal error"
)

func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(recovery(s.logger), requestLogger(s.logger), CORSMiddleware(), s.limitBody())

	router.GET("/health", s.handleHealth)

	router.POST("/computer/preview", s.handleComputerPreview)
	router.POST("/computer/execute", s.handleComputerExecute)

	router.POST("/shell/preview", s.handleShellPreview)
	router.POST("/shell/execute", s.handleShellExecute)

	autopilot := router.Group("/autopilot")
	{
		autopilot.POST("/capture", s.handleCapture)
		autopilot.POST("/act", s.handleAct)
		autopilot.GET("/permissions", s.handlePermissions)
	}

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, bodyNotFound)
	})
	return router
}

// CORSMiddleware sets the cross-origin headers on every response and answers
// preflight requests for any path.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBody)
		}
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("bridge request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// recovery turns a handler panic into a 500 so the connection loop keeps going.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			logger.Error("bridge handler panic",
				"path", c.Request.URL.Path,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			if !c.Writer.Written() {
				c.String(http.StatusInternalServerError, bodyInternal)
			}
			c.Abort()
		}()
		c.Next()
	}
}
