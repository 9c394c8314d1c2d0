package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tutorhub/tutoring-api/internal/models"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/export"
)

type gradedTaskRepository interface {
	ListGraded(ctx context.Context, studentID string) ([]models.Task, error)
}

// ReportFormat selects the grade report output encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportFile is a rendered grade report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService renders a student's graded tasks as CSV or PDF.
type ReportService struct {
	tasks  gradedTaskRepository
	users  lessonUserRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(tasks gradedTaskRepository, users lessonUserRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		tasks:  tasks,
		users:  users,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// GradeReport builds the grade report for one student.
func (s *ReportService) GradeReport(ctx context.Context, studentID string, format ReportFormat) (*ReportFile, error) {
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	tasks, err := s.tasks.ListGraded(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load graded tasks")
	}

	dataset := gradeDataset(tasks)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case ReportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("grades-%s-%s.csv", student.Surname, stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset, "Grade report for "+student.FullName())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("grades-%s-%s.pdf", student.Surname, stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func gradeDataset(tasks []models.Task) export.Dataset {
	headers := []string{"Task", "Due date", "Max points", "Earned points", "Percentage"}
	rows := make([]map[string]string, 0, len(tasks))
	for _, t := range tasks {
		if t.EarnedPoints == nil {
			continue
		}
		pct := float64(*t.EarnedPoints) / float64(t.MaxPoints) * 100
		rows = append(rows, map[string]string{
			"Task":          t.Title,
			"Due date":      t.DueDate.Format(time.DateOnly),
			"Max points":    strconv.Itoa(t.MaxPoints),
			"Earned points": strconv.Itoa(*t.EarnedPoints),
			"Percentage":    fmt.Sprintf("%.1f%%", pct),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
