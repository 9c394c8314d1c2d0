package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutoring-api/internal/service"
	"github.com/tutorhub/tutoring-api/pkg/response"
)

// FileHandler serves task attachments through signed download tokens.
type FileHandler struct {
	service *service.TaskService
}

// NewFileHandler creates a new handler.
func NewFileHandler(svc *service.TaskService) *FileHandler {
	return &FileHandler{service: svc}
}

// Download godoc
// @Summary Download an attachment through a signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	file, name, err := h.service.OpenAttachment(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, stat.Size(), "application/octet-stream", file, nil)
}
