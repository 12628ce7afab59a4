package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-sample-pipeline/docs"
	"go-sample-pipeline/internal/api/handler"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/pkg/router"
)

// @title Sample Pipeline API
// @version 1.0
// @description Starts producer/consumer averaging runs and serves their history.
// @host localhost:8080
// @BasePath /api/v1
func RegisterRoutes(r *router.Router, h *handler.Handler, m *metrics.Metrics) {
	r.POST("/api/v1/runs", h.CreateRun)
	r.GET("/api/v1/runs", h.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/results", h.GetRunResults)
	r.GET("/api/v1/runs/*/errors", h.GetRunErrors)
	r.GET("/api/v1/runs/*/workers", h.GetRunWorkers)
	// Generic run routes last
	r.GET("/api/v1/runs/*", h.GetRun)
	r.DELETE("/api/v1/runs/*", h.DeleteRun)
	r.GET("/api/v1/download/*/*", h.DownloadFile)

	r.Handle("/metrics", m.Handler())
	r.Handle("/swagger/*", httpSwagger.WrapHandler)
}
