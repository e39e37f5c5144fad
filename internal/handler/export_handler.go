package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/models"
	"github.com/academix/gradebook-api/internal/service"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
	"github.com/academix/gradebook-api/pkg/response"
)

// ExportHandler serves report card and grade sheet downloads.
type ExportHandler struct {
	service  *service.ExportService
	cards    *service.ReportCardService
	students studentAccessReader
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService, cards *service.ReportCardService, students studentAccessReader) *ExportHandler {
	return &ExportHandler{service: svc, cards: cards, students: students}
}

// ReportCardPDF godoc
// @Summary Download a report card as PDF
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Report card ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /report-cards/{id}/pdf [get]
func (h *ExportHandler) ReportCardPDF(c *gin.Context) {
	card, err := h.cards.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := authorizeStudentAccess(c, h.students, card.StudentID); err != nil {
		response.Error(c, err)
		return
	}

	payload, filename, err := h.service.ReportCardPDF(c.Request.Context(), card.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// ClassGradesCSV godoc
// @Summary Download a class grade sheet as CSV
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Class ID"
// @Param academic_year_id query string true "Academic year ID"
// @Param term_type query string true "Term type"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/{id}/grades.csv [get]
func (h *ExportHandler) ClassGradesCSV(c *gin.Context) {
	academicYearID := c.Query("academic_year_id")
	termType := models.TermType(c.Query("term_type"))
	if academicYearID == "" || !termType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year_id and term_type are required"))
		return
	}

	payload, filename, err := h.service.ClassGradesCSV(c.Request.Context(), c.Param("id"), academicYearID, termType)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
