package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/service"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
	"github.com/academix/gradebook-api/pkg/response"
)

// TranscriptHandler exposes transcript endpoints.
type TranscriptHandler struct {
	service  *service.TranscriptService
	students studentAccessReader
}

// NewTranscriptHandler creates a new handler.
func NewTranscriptHandler(svc *service.TranscriptService, students studentAccessReader) *TranscriptHandler {
	return &TranscriptHandler{service: svc, students: students}
}

// Get godoc
// @Summary Fetch a student's transcript
// @Tags Transcripts
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /transcripts/{studentId} [get]
func (h *TranscriptHandler) Get(c *gin.Context) {
	studentID := c.Param("studentId")
	if err := authorizeStudentAccess(c, h.students, studentID); err != nil {
		response.Error(c, err)
		return
	}

	transcript, err := h.service.Get(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, transcript, nil)
}

// Refresh godoc
// @Summary Rebuild a student's transcript from their full grade history
// @Tags Transcripts
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /transcripts/{studentId}/refresh [post]
func (h *TranscriptHandler) Refresh(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	transcript, err := h.service.Refresh(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, transcript, nil)
}
