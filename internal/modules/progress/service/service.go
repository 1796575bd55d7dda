package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/progress/dto"
	"anoa.com/schoolhub/internal/modules/progress/repository"
	rosterService "anoa.com/schoolhub/internal/modules/roster/service"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
)

const recentLimit = 20

var (
	ErrAcademicYear = apperror.New(http.StatusBadRequest, "Academic year must look like 2024-2025.", apperror.ErrInvalidInput)
	ErrTerm         = apperror.New(http.StatusBadRequest, "Unknown term.", apperror.ErrInvalidInput)
)

type ProgressService interface {
	Record(ctx context.Context, teacher *entity.Principal, input dto.RecordInput) (*entity.ProgressRecord, error)
	Recent(ctx context.Context, teacher *entity.Principal) ([]entity.ProgressRecord, error)
	// Students lists who the teacher may record progress for.
	Students(ctx context.Context, teacher *entity.Principal) ([]entity.Account, error)
	ForStudent(ctx context.Context, student *entity.Principal) ([]dto.YearReport, error)
}

type progressService struct {
	repo   repository.ProgressRepository
	roster rosterService.RosterService
}

func NewProgressService(repo repository.ProgressRepository, roster rosterService.RosterService) ProgressService {
	return &progressService{
		repo:   repo,
		roster: roster,
	}
}

// CurrentAcademicYear names the school year that contains t. Years start in
// July.
func CurrentAcademicYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.July {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

func validAcademicYear(year string) bool {
	var start, end int
	if len(year) != 9 {
		return false
	}
	if _, err := fmt.Sscanf(year, "%4d-%4d", &start, &end); err != nil {
		return false
	}
	return start >= 1900 && end == start+1
}

func (s *progressService) Students(ctx context.Context, teacher *entity.Principal) ([]entity.Account, error) {
	return s.roster.Students(ctx, teacher)
}

func (s *progressService) Record(ctx context.Context, teacher *entity.Principal, input dto.RecordInput) (*entity.ProgressRecord, error) {
	if teacher == nil || !teacher.IsTeacher() {
		return nil, apperror.ErrForbidden
	}
	student, err := s.roster.StudentOf(ctx, teacher, input.StudentID)
	if err != nil {
		return nil, err
	}

	year := strings.TrimSpace(input.AcademicYear)
	if !validAcademicYear(year) {
		return nil, ErrAcademicYear
	}
	if !entity.ValidTerm(input.Term) {
		return nil, ErrTerm
	}
	subject := strings.TrimSpace(input.Subject)
	grade := strings.TrimSpace(input.Grade)
	if subject == "" || grade == "" {
		return nil, apperror.ErrInvalidInput
	}

	record := &entity.ProgressRecord{
		StudentID:    student.ID,
		TeacherID:    teacher.ID(),
		Subject:      subject,
		Term:         input.Term,
		AcademicYear: year,
		Grade:        grade,
		Remarks:      strings.TrimSpace(input.Remarks),
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, apperror.Storage(err)
	}

	logger.Infof("teacher %d recorded %s %s %s for student %d", teacher.ID(), subject, record.Term, year, student.ID)
	return record, nil
}

func (s *progressService) Recent(ctx context.Context, teacher *entity.Principal) ([]entity.ProgressRecord, error) {
	if teacher == nil || !teacher.IsTeacher() {
		return nil, apperror.ErrForbidden
	}
	records, err := s.repo.RecentByTeacher(ctx, teacher.ID(), recentLimit)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return records, nil
}

func (s *progressService) ForStudent(ctx context.Context, student *entity.Principal) ([]dto.YearReport, error) {
	if student == nil || !student.IsStudent() {
		return nil, apperror.ErrForbidden
	}
	records, err := s.repo.ByStudent(ctx, student.ID())
	if err != nil {
		return nil, apperror.Storage(err)
	}

	var reports []dto.YearReport
	for _, r := range records {
		if n := len(reports); n == 0 || reports[n-1].AcademicYear != r.AcademicYear {
			reports = append(reports, dto.YearReport{AcademicYear: r.AcademicYear})
		}
		last := &reports[len(reports)-1]
		last.Records = append(last.Records, r)
	}
	return reports, nil
}
