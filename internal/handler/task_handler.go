package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutoring-api/internal/dto"
	"github.com/tutorhub/tutoring-api/internal/models"
	"github.com/tutorhub/tutoring-api/internal/service"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/response"
)

// TaskHandler exposes the assignment endpoints.
type TaskHandler struct {
	service     *service.TaskService
	maxFileSize int64
}

// NewTaskHandler creates a new handler.
func NewTaskHandler(svc *service.TaskService, maxFileSize int64) *TaskHandler {
	return &TaskHandler{service: svc, maxFileSize: maxFileSize}
}

// Assign godoc
// @Summary Issue a task to a student
// @Tags Tasks
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param due_date formData string true "Due date (YYYY-MM-DD)"
// @Param max_points formData int true "Maximum points"
// @Param student_id formData string true "Student ID"
// @Param attachment formData file false "Optional attachment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tasks [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.limitBody(c)

	var req dto.AssignTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}

	name, reader, cleanup, err := h.openUpload(c, "attachment")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	view, err := h.service.Assign(c.Request.Context(), claims.UserID, req, name, reader)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, view)
}

// List godoc
// @Summary List the caller's tasks
// @Description Students see tasks assigned to them, teachers the tasks they issued
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		tasks []dto.TaskView
		err   error
	)
	switch claims.Role {
	case models.RoleStudent:
		tasks, err = h.service.ListForStudent(c.Request.Context(), claims.UserID)
	case models.RoleTeacher:
		tasks, err = h.service.ListForTeacher(c.Request.Context(), claims.UserID)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "tasks are only available to teachers and students"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tasks, map[string]interface{}{"count": len(tasks)})
}

// Submit godoc
// @Summary Submit an answer for a task
// @Tags Tasks
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param answer formData string true "Answer text"
// @Param attachment formData file false "Optional attachment"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /tasks/{id}/submit [post]
func (h *TaskHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.limitBody(c)

	var req dto.SubmitTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	name, reader, cleanup, err := h.openUpload(c, "attachment")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	if err := h.service.Submit(c.Request.Context(), c.Param("id"), claims.UserID, req, name, reader); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Grade godoc
// @Summary Grade a submitted task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param payload body dto.GradeTaskRequest true "Grade payload"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /tasks/{id}/grade [post]
func (h *TaskHandler) Grade(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.GradeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	if err := h.service.Grade(c.Request.Context(), c.Param("id"), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// limitBody caps the request body so oversized uploads fail during parsing
// instead of being read in full. The extra megabyte covers the text fields.
func (h *TaskHandler) limitBody(c *gin.Context) {
	if h.maxFileSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+1<<20)
	}
}

// openUpload fetches an optional multipart file, enforcing the size cap.
// The returned cleanup is always safe to defer.
func (h *TaskHandler) openUpload(c *gin.Context, field string) (string, io.Reader, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, noop, nil
		}
		var maxErr *http.MaxBytesError
		if errors.Is(err, multipart.ErrMessageTooLarge) || errors.As(err, &maxErr) {
			return "", nil, noop, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the size limit")
		}
		return "", nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "malformed upload")
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		return "", nil, noop, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the size limit")
	}
	file, err := header.Open()
	if err != nil {
		return "", nil, noop, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attachment")
	}
	return header.Filename, file, func() { file.Close() }, nil
}
