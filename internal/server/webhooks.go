package server

import (
	"encoding/json"
	"io"
	"net/http"

	"loanflow/internal/common/validation"
	"loanflow/internal/models"

	"github.com/gin-gonic/gin"
)

// Webhook handlers validate payloads against their schema, dispatch to the
// orchestrator and acknowledge. Alerts the orchestrator classifies as
// stale or foreign are acknowledged too; the provider must not retry them.

func (s *Server) handleConnectionStatus(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := validation.ValidateConnectionStatus(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var alert models.ConnectionStatusAlert
	if err := json.Unmarshal(body, &alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := s.svc.OnAccountingConnectionStatus(c.Request.Context(), alert); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert received"})
}

func (s *Server) handleDataSync(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := validation.ValidateDataSync(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var alert models.DataSyncAlert
	if err := json.Unmarshal(body, &alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := s.svc.OnDataTypeSyncComplete(c.Request.Context(), alert); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert received"})
}

func (s *Server) handleCategorisation(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	if err := validation.ValidateCategorisation(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var alert models.CategorisationAlert
	if err := json.Unmarshal(body, &alert); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := s.svc.OnAccountCategorisationStatus(c.Request.Context(), alert); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert received"})
}
