package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/models"
	"github.com/academix/gradebook-api/internal/service"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
	"github.com/academix/gradebook-api/pkg/response"
)

// ReportCardHandler exposes report card endpoints.
type ReportCardHandler struct {
	service  *service.ReportCardService
	students studentAccessReader
}

// NewReportCardHandler creates a new handler.
func NewReportCardHandler(svc *service.ReportCardService, students studentAccessReader) *ReportCardHandler {
	return &ReportCardHandler{service: svc, students: students}
}

// Generate godoc
// @Summary Compile a report card
// @Description Recomputes the student's term grades and compiles totals, ranking and attendance into a report card
// @Tags Report Cards
// @Accept json
// @Produce json
// @Param payload body service.GenerateReportCardRequest true "Compilation scope"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /report-cards/generate [post]
func (h *ReportCardHandler) Generate(c *gin.Context) {
	var req service.GenerateReportCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report card payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req.SchoolID = claims.SchoolID

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Fetch a report card by student, year and term
// @Tags Report Cards
// @Produce json
// @Param student_id query string true "Student ID"
// @Param academic_year_id query string true "Academic year ID"
// @Param term_type query string true "Term type"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /report-cards [get]
func (h *ReportCardHandler) Get(c *gin.Context) {
	studentID := c.Query("student_id")
	academicYearID := c.Query("academic_year_id")
	termType := models.TermType(c.Query("term_type"))
	if studentID == "" || academicYearID == "" || !termType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id, academic_year_id and term_type are required"))
		return
	}
	if err := authorizeStudentAccess(c, h.students, studentID); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Get(c.Request.Context(), studentID, academicYearID, termType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Publish godoc
// @Summary Publish a report card
// @Description Marks the report card visible to the student; publishing is once-only
// @Tags Report Cards
// @Produce json
// @Param id path string true "Report card ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /report-cards/{id}/publish [post]
func (h *ReportCardHandler) Publish(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	card, err := h.service.Publish(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, card, nil)
}
