// Package server exposes the orchestrator over HTTP: a small REST surface
// for applications and the provider's webhook callbacks.
package server

import (
	"context"
	"net/http"

	domainerrors "loanflow/internal/common/errors"
	"loanflow/internal/common/logger"
	"loanflow/internal/models"

	"github.com/gin-gonic/gin"
)

// Service is the orchestrator surface the server dispatches to.
type Service interface {
	CreateApplication(ctx context.Context) (*models.Application, error)
	SubmitApplicationDetails(ctx context.Context, applicationID string, form models.LoanForm) error
	GetApplication(ctx context.Context, applicationID string) (*models.Application, error)
	GetApplicationStatus(ctx context.Context, applicationID string) (models.Status, error)
	OnAccountingConnectionStatus(ctx context.Context, alert models.ConnectionStatusAlert) error
	OnDataTypeSyncComplete(ctx context.Context, alert models.DataSyncAlert) error
	OnAccountCategorisationStatus(ctx context.Context, alert models.CategorisationAlert) error
}

type Server struct {
	engine *gin.Engine
	svc    Service
	logger logger.Logger
}

func New(svc Service, log logger.Logger) *Server {
	s := &Server{
		engine: gin.New(),
		svc:    svc,
		logger: log.WithFields(map[string]interface{}{"component": "server"}),
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api/v1")
	{
		api.POST("/applications", s.handleCreateApplication)
		api.POST("/applications/:id/details", s.handleSubmitDetails)
		api.GET("/applications/:id", s.handleGetApplication)
		api.GET("/applications/:id/status", s.handleGetStatus)
	}

	webhooks := s.engine.Group("/webhooks/codaflow")
	{
		webhooks.POST("/connection-status", s.handleConnectionStatus)
		webhooks.POST("/data-sync", s.handleDataSync)
		webhooks.POST("/categorisation", s.handleCategorisation)
	}
}

// Router returns the http handler for serving.
func (s *Server) Router() http.Handler {
	return s.engine
}

// respondError maps domain error kinds to HTTP statuses; everything else
// is an internal error.
func (s *Server) respondError(c *gin.Context, err error) {
	switch domainerrors.KindOf(err) {
	case domainerrors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domainerrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domainerrors.KindPrecondition:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
