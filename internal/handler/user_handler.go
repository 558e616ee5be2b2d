package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the signed-in user's own profile.
type UserHandler struct{}

// NewUserHandler creates a handler layer.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// MeResponse describes the signed-in user.
type MeResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security SessionCookie
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	session := mustSession(c)
	return c.JSON(http.StatusOK, MeResponse{
		ID:       session.UserID,
		Username: session.Username,
	})
}
