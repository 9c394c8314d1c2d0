package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorhub/tutoring-api/internal/models"
	"github.com/tutorhub/tutoring-api/internal/service"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/response"
)

// ReportHandler exposes grade report downloads.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Grades godoc
// @Summary Download a student's grade report
// @Description Teachers and admins may fetch any student; students only their own
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param student_id path string true "Student ID"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Router /reports/grades/{student_id} [get]
func (h *ReportHandler) Grades(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	studentID := c.Param("student_id")
	if claims.Role == models.RoleStudent && claims.UserID != studentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only fetch their own report"))
		return
	}

	format := service.ReportFormat(c.DefaultQuery("format", "csv"))
	report, err := h.service.GradeReport(c.Request.Context(), studentID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	c.Data(200, report.ContentType, report.Content)
}
