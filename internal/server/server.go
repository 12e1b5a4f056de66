package server

import (
	"context"
	"net/http"
	"time"

	"replay_report/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// ReportRenderer builds and renders a report for a run parameter.
type ReportRenderer interface {
	Render(ctx context.Context, param, ext string) ([]byte, string, error)
}

// Server serves the comparison report over HTTP, rebuilding it on every request
type Server struct {
	echo        *echo.Echo
	reports     ReportRenderer
	defaultName string
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, reports ReportRenderer, logger *logrus.Logger) *Server {
	e := echo.New()
	e.Debug = cfg.Server.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	if cfg.Server.Debug {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human} ${error}\n",
		}))
	}

	server := &Server{
		echo:        e,
		reports:     reports,
		defaultName: cfg.Report.Prefix,
		logger:      logger,
	}

	server.setupRoutes()
	return server
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/", s.page("html"))
	s.echo.GET("/report.html", s.page("html"))
	s.echo.GET("/report.xlsx", s.page("xlsx"))
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "replay-report",
	})
}

// page renders the report in the given format. ?name= overrides the
// configured run parameter.
func (s *Server) page(ext string) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.QueryParam("name")
		if name == "" {
			name = s.defaultName
		}
		if name == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "report name is required",
			})
		}

		data, contentType, err := s.reports.Render(c.Request().Context(), name, ext)
		if err != nil {
			s.logger.WithError(err).WithField("report", name).Error("Failed to render report")
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to render report",
			})
		}

		if ext != "html" {
			c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`.`+ext+`"`)
		}
		return c.Blob(http.StatusOK, contentType, data)
	}
}
