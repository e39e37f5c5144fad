package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/models"
	"github.com/academix/gradebook-api/internal/service"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
	"github.com/academix/gradebook-api/pkg/response"
)

// GradeHandler exposes grade computation and query endpoints.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Compute godoc
// @Summary Compute a subject grade
// @Description Aggregates submissions and exam results, resolves the letter grade and upserts the grade row
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.ComputeGradeRequest true "Computation scope"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/compute [post]
func (h *GradeHandler) Compute(c *gin.Context) {
	var req service.ComputeGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid computation payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if req.Force && !isAdmin(claims) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only administrators may overwrite locked grades"))
		return
	}
	req.SchoolID = claims.SchoolID

	grade, err := h.service.ComputeSubjectGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grade, nil)
}

// ComputeTerm godoc
// @Summary Compute all subject grades for a student's term
// @Description Runs the subject computation for every subject scheduled in the class; locked grades keep their stored values
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.ComputeTermRequest true "Computation scope"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/compute-term [post]
func (h *GradeHandler) ComputeTerm(c *gin.Context) {
	var req service.ComputeTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid computation payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req.SchoolID = claims.SchoolID

	grades, err := h.service.ComputeTermGrades(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grades, nil)
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param student_id query string false "Student ID"
// @Param subject_id query string false "Subject ID"
// @Param class_id query string false "Class ID"
// @Param academic_year_id query string false "Academic year ID"
// @Param term_type query string false "Term type"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	filter := models.GradeFilter{
		StudentID:      c.Query("student_id"),
		SubjectID:      c.Query("subject_id"),
		ClassID:        c.Query("class_id"),
		AcademicYearID: c.Query("academic_year_id"),
		TermType:       models.TermType(c.Query("term_type")),
	}

	grades, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grades, nil)
}
