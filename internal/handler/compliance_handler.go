package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"complianceadvisor/internal/compliance"
	"complianceadvisor/internal/errors"
)

// RuleBook answers compliance checklist queries.
type RuleBook interface {
	RequirementsFor(c compliance.Classification) (compliance.Requirements, error)
	Options() compliance.Options
}

// ComplianceHandler handles checklist endpoints.
type ComplianceHandler struct {
	rules RuleBook
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(rules RuleBook) *ComplianceHandler {
	return &ComplianceHandler{rules: rules}
}

// CheckRequest is a classification tuple.
type CheckRequest struct {
	Country         string `json:"country" validate:"required"`
	EntityType      string `json:"entityType" validate:"required"`
	ProductCategory string `json:"productCategory" validate:"required"`
}

// Check godoc
// @Summary Compliance checklist for a classification
// @Tags compliance
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body CheckRequest true "Classification"
// @Success 200 {object} compliance.Requirements
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/check [post]
func (h *ComplianceHandler) Check(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "country, entityType and productCategory are required",
			Code:  "VALIDATION_ERROR",
		})
	}

	result, err := h.rules.RequirementsFor(compliance.Classification{
		Country:         req.Country,
		EntityType:      req.EntityType,
		ProductCategory: req.ProductCategory,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Options godoc
// @Summary Declared countries, entity types and product categories
// @Tags compliance
// @Produce json
// @Security SessionCookie
// @Success 200 {object} compliance.Options
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/options [get]
func (h *ComplianceHandler) Options(c echo.Context) error {
	return c.JSON(http.StatusOK, h.rules.Options())
}
