package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutoring-api/internal/dto"
	"github.com/tutorhub/tutoring-api/internal/service"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/response"
)

// MessageHandler exposes the pairwise chat endpoints.
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler creates a new handler.
func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// Thread godoc
// @Summary Read the conversation with one peer
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param peer_id path string true "Peer user ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /messages/{peer_id} [get]
func (h *MessageHandler) Thread(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	msgs, err := h.service.Thread(c.Request.Context(), claims.UserID, claims.Role, c.Param("peer_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, msgs, map[string]interface{}{"count": len(msgs)})
}

// Send godoc
// @Summary Post a message to one peer
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param peer_id path string true "Peer user ID"
// @Param payload body dto.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /messages/{peer_id} [post]
func (h *MessageHandler) Send(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), claims.UserID, claims.Role, c.Param("peer_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}
