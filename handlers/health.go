package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docstore/internal/document/service"
)

// RegisterHealth registers /health (liveness) and /ready (backend reachable).
func RegisterHealth(r gin.IRouter, svc service.Service, startTime time.Time) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		uptime := time.Since(startTime).String()
		n, err := svc.Count(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "backend": svc.Backend(), "error": err.Error(), "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "backend": svc.Backend(), "documents": n, "uptime": uptime})
	})
}
