package server

import (
	"net/http"

	"loanflow/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleCreateApplication(c *gin.Context) {
	app, err := s.svc.CreateApplication(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

type submitDetailsRequest struct {
	Amount     float64 `json:"amount"`
	TermMonths int     `json:"termMonths"`
}

func (s *Server) handleSubmitDetails(c *gin.Context) {
	var req submitDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	form := models.LoanForm{Amount: req.Amount, TermMonths: req.TermMonths}
	if err := s.svc.SubmitApplicationDetails(c.Request.Context(), c.Param("id"), form); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application details submitted"})
}

func (s *Server) handleGetApplication(c *gin.Context) {
	app, err := s.svc.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (s *Server) handleGetStatus(c *gin.Context) {
	status, err := s.svc.GetApplicationStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
