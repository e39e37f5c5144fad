package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/service"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
	"github.com/academix/gradebook-api/pkg/response"
)

// AcademicYearHandler exposes academic year management endpoints.
type AcademicYearHandler struct {
	service *service.AcademicYearService
}

// NewAcademicYearHandler creates a new handler.
func NewAcademicYearHandler(svc *service.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{service: svc}
}

// Create godoc
// @Summary Create academic year
// @Tags Academic Years
// @Accept json
// @Produce json
// @Param payload body service.CreateAcademicYearRequest true "Academic year payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years [post]
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req service.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid academic year payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req.SchoolID = claims.SchoolID

	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, year)
}

// List godoc
// @Summary List academic years for the caller's school
// @Tags Academic Years
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years [get]
func (h *AcademicYearHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	years, err := h.service.List(c.Request.Context(), claims.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, years, nil)
}

// Current godoc
// @Summary Get the current academic year
// @Tags Academic Years
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/current [get]
func (h *AcademicYearHandler) Current(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	year, err := h.service.Current(c.Request.Context(), claims.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, year, nil)
}

// SetCurrent godoc
// @Summary Mark an academic year as current
// @Description Unsets any previous current year for the school in the same transaction
// @Tags Academic Years
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id}/current [put]
func (h *AcademicYearHandler) SetCurrent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.SetCurrent(c.Request.Context(), claims.SchoolID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
