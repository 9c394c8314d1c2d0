package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutoring-api/internal/models"
	"github.com/tutorhub/tutoring-api/internal/service"
	"github.com/tutorhub/tutoring-api/pkg/response"
)

// AdminHandler exposes account moderation endpoints.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// ListPending godoc
// @Summary List registrations awaiting approval
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/pending [get]
func (h *AdminHandler) ListPending(c *gin.Context) {
	users, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, map[string]interface{}{"count": len(users)})
}

// ListUsers godoc
// @Summary List approved accounts by role
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string true "Role filter (TEACHER or STUDENT)"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	role := models.UserRole(strings.ToUpper(c.Query("role")))
	users, err := h.service.ListByRole(c.Request.Context(), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, map[string]interface{}{"count": len(users)})
}

// Approve godoc
// @Summary Approve a pending account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/approve/{id} [post]
func (h *AdminHandler) Approve(c *gin.Context) {
	if err := h.service.Approve(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reject godoc
// @Summary Reject and remove a pending account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/reject/{id} [delete]
func (h *AdminHandler) Reject(c *gin.Context) {
	if err := h.service.Reject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
