package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutoring-api/internal/dto"
	"github.com/tutorhub/tutoring-api/internal/models"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/response"
)

type lessonService interface {
	QueryEvents(ctx context.Context, subjectID string, role models.UserRole, from, to time.Time) ([]dto.CalendarEvent, error)
	CreateSeries(ctx context.Context, teacherID, studentID string, req dto.CreateLessonSeriesRequest) (int64, error)
	DeleteInstance(ctx context.Context, eventID, requesterID string, role models.UserRole) error
}

// LessonHandler exposes the lesson calendar endpoints.
type LessonHandler struct {
	service lessonService
}

// NewLessonHandler creates a new handler.
func NewLessonHandler(svc lessonService) *LessonHandler {
	return &LessonHandler{service: svc}
}

// Events godoc
// @Summary Calendar events for the authenticated user
// @Description Expand the caller's recurring lesson series into events within [from, to]
// @Tags Lessons
// @Produce json
// @Security BearerAuth
// @Param from query string true "Window start (YYYY-MM-DD)"
// @Param to query string true "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons/events [get]
func (h *LessonHandler) Events(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must use YYYY-MM-DD"))
		return
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must use YYYY-MM-DD"))
		return
	}

	events, err := h.service.QueryEvents(c.Request.Context(), claims.UserID, claims.Role, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, events, map[string]interface{}{"count": len(events)})
}

// Assign godoc
// @Summary Create a recurring lesson series
// @Description Validate the candidate against the teacher's commitments and store it when conflict free
// @Tags Lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param student_id path string true "Student ID"
// @Param payload body dto.CreateLessonSeriesRequest true "Series payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons/assign/{student_id} [post]
func (h *LessonHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateLessonSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}

	id, err := h.service.CreateSeries(c.Request.Context(), claims.UserID, c.Param("student_id"), req)
	if err != nil {
		var conflict *models.SchedulingConflictError
		if errors.As(err, &conflict) {
			response.Conflict(c, appErrors.ErrSchedulingConflict, conflict)
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateLessonSeriesResponse{ID: id})
}

// DeleteInstance godoc
// @Summary Delete a lesson series through one of its event identifiers
// @Description Removes the entire recurrence the event belongs to
// @Tags Lessons
// @Produce json
// @Security BearerAuth
// @Param event_id path string true "Event identifier (series-<id>-<date>)"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /lessons/events/{event_id} [delete]
func (h *LessonHandler) DeleteInstance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteInstance(c.Request.Context(), c.Param("event_id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
