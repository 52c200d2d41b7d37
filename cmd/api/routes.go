package main

import (
	"callwatch/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers. Keep this file free of
// business logic.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	r.GET("/healthz", h.Health)

	v1 := r.Group("/v1")

	// Device bridge endpoints (public on the device-local network).
	// NOTE: protect these with transport-level auth when exposed beyond
	// localhost.
	v1.POST("/events", h.IngestEvent)
	v1.POST("/lifecycle", h.Lifecycle)
	v1.POST("/auth/token", h.Token)

	// Control plane.
	protected := v1.Group("", authMW)
	protected.POST("/calls", h.StartCall)
	protected.GET("/calls/active", h.ActiveCalls)
	protected.GET("/calls/events", h.EventFeed)
	protected.GET("/history/summary", h.HistorySummary)
}
