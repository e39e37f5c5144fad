package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academix/gradebook-api/internal/service"
	appErrors "github.com/academix/gradebook-api/pkg/errors"
	"github.com/academix/gradebook-api/pkg/response"
)

// SchemeHandler exposes grading scheme management endpoints.
type SchemeHandler struct {
	service *service.SchemeService
}

// NewSchemeHandler creates a new handler.
func NewSchemeHandler(svc *service.SchemeService) *SchemeHandler {
	return &SchemeHandler{service: svc}
}

// Create godoc
// @Summary Create grading scheme
// @Tags Grading Schemes
// @Accept json
// @Produce json
// @Param payload body service.CreateSchemeRequest true "Scheme payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes [post]
func (h *SchemeHandler) Create(c *gin.Context) {
	var req service.CreateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheme payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req.SchoolID = claims.SchoolID

	scheme, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, scheme)
}

// List godoc
// @Summary List grading schemes for the caller's school
// @Tags Grading Schemes
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes [get]
func (h *SchemeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	schemes, err := h.service.List(c.Request.Context(), claims.SchoolID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, schemes, nil)
}

// Get godoc
// @Summary Get a grading scheme with its boundaries
// @Tags Grading Schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes/{id} [get]
func (h *SchemeHandler) Get(c *gin.Context) {
	scheme, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, scheme, nil)
}

// Update godoc
// @Summary Update a grading scheme
// @Tags Grading Schemes
// @Accept json
// @Produce json
// @Param id path string true "Scheme ID"
// @Param payload body service.UpdateSchemeRequest true "Scheme payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes/{id} [put]
func (h *SchemeHandler) Update(c *gin.Context) {
	var req service.UpdateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheme payload"))
		return
	}

	scheme, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, scheme, nil)
}

// Delete godoc
// @Summary Delete a grading scheme and its boundaries
// @Tags Grading Schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes/{id} [delete]
func (h *SchemeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetDefault godoc
// @Summary Mark a scheme as the school default
// @Description Unsets any previous default for the school in the same transaction
// @Tags Grading Schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes/{id}/default [put]
func (h *SchemeHandler) SetDefault(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.SetDefault(c.Request.Context(), claims.SchoolID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddBoundary godoc
// @Summary Add a boundary rule to a scheme
// @Tags Grading Schemes
// @Accept json
// @Produce json
// @Param id path string true "Scheme ID"
// @Param payload body service.AddBoundaryRequest true "Boundary payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes/{id}/boundaries [post]
func (h *SchemeHandler) AddBoundary(c *gin.Context) {
	var req service.AddBoundaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid boundary payload"))
		return
	}

	boundary, err := h.service.AddBoundary(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, boundary)
}

// DeleteBoundary godoc
// @Summary Remove a boundary rule from a scheme
// @Tags Grading Schemes
// @Produce json
// @Param id path string true "Scheme ID"
// @Param boundaryId path string true "Boundary ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /grading-schemes/{id}/boundaries/{boundaryId} [delete]
func (h *SchemeHandler) DeleteBoundary(c *gin.Context) {
	if err := h.service.DeleteBoundary(c.Request.Context(), c.Param("id"), c.Param("boundaryId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
