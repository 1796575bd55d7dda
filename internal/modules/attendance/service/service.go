package service

import (
	"context"
	"math"
	"net/http"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/attendance/dto"
	"anoa.com/schoolhub/internal/modules/attendance/repository"
	rosterService "anoa.com/schoolhub/internal/modules/roster/service"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
)

var ErrFutureDate = apperror.New(http.StatusBadRequest, "Attendance cannot be recorded for a future date.", apperror.ErrInvalidInput)

type AttendanceService interface {
	// Sheet lists the teacher's students with their status on day. Students
	// not marked yet show as present.
	Sheet(ctx context.Context, teacher *entity.Principal, day time.Time) (*dto.Sheet, error)
	// Record stores one status per student of the teacher for day. Students
	// left out of statuses are marked absent.
	Record(ctx context.Context, teacher *entity.Principal, day time.Time, statuses map[uint]string) (int, error)
	ForStudent(ctx context.Context, student *entity.Principal) (*dto.StudentAttendance, error)
}

type attendanceService struct {
	repo   repository.AttendanceRepository
	roster rosterService.RosterService
	now    func() time.Time
}

func NewAttendanceService(repo repository.AttendanceRepository, roster rosterService.RosterService) AttendanceService {
	return &attendanceService{
		repo:   repo,
		roster: roster,
		now:    time.Now,
	}
}

func (s *attendanceService) Sheet(ctx context.Context, teacher *entity.Principal, day time.Time) (*dto.Sheet, error) {
	students, err := s.roster.Students(ctx, teacher)
	if err != nil {
		return nil, err
	}
	day = entity.SchoolDay(day)

	ids := make([]uint, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.ID)
	}
	records, err := s.repo.ForDay(ctx, ids, day)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	marked := make(map[uint]string, len(records))
	for _, r := range records {
		marked[r.StudentID] = r.Status
	}

	sheet := &dto.Sheet{Date: day, Rows: make([]dto.SheetRow, 0, len(students))}
	for _, st := range students {
		row := dto.SheetRow{Student: st, Status: entity.AttendancePresent}
		if status, ok := marked[st.ID]; ok {
			row.Status, row.Marked = status, true
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func (s *attendanceService) Record(ctx context.Context, teacher *entity.Principal, day time.Time, statuses map[uint]string) (int, error) {
	students, err := s.roster.Students(ctx, teacher)
	if err != nil {
		return 0, err
	}
	day = entity.SchoolDay(day)
	if day.After(entity.SchoolDay(s.now())) {
		return 0, ErrFutureDate
	}

	onRoster := make(map[uint]bool, len(students))
	for _, st := range students {
		onRoster[st.ID] = true
	}
	for id, status := range statuses {
		if !onRoster[id] {
			return 0, apperror.ErrForbidden
		}
		if !entity.ValidAttendanceStatus(status) {
			return 0, apperror.ErrInvalidInput
		}
	}

	records := make([]entity.AttendanceRecord, 0, len(students))
	for _, st := range students {
		status, ok := statuses[st.ID]
		if !ok {
			status = entity.AttendanceAbsent
		}
		records = append(records, entity.AttendanceRecord{
			StudentID: st.ID,
			Date:      day,
			Status:    status,
			MarkedBy:  teacher.ID(),
		})
	}
	if err := s.repo.Upsert(ctx, records); err != nil {
		return 0, apperror.Storage(err)
	}

	logger.Infof("teacher %d marked attendance for %d students on %s", teacher.ID(), len(records), day.Format(dto.DateLayout))
	return len(records), nil
}

func (s *attendanceService) ForStudent(ctx context.Context, student *entity.Principal) (*dto.StudentAttendance, error) {
	if student == nil || !student.IsStudent() {
		return nil, apperror.ErrForbidden
	}
	records, err := s.repo.ByStudent(ctx, student.ID())
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return &dto.StudentAttendance{Records: records, Summary: summarize(records)}, nil
}

// summarize counts late days as attended.
func summarize(records []entity.AttendanceRecord) dto.Summary {
	var sum dto.Summary
	for _, r := range records {
		switch r.Status {
		case entity.AttendancePresent:
			sum.Present++
		case entity.AttendanceAbsent:
			sum.Absent++
		case entity.AttendanceLate:
			sum.Late++
		}
	}
	if total := sum.Present + sum.Absent + sum.Late; total > 0 {
		sum.Rate = math.Round(float64(sum.Present+sum.Late)/float64(total)*1000) / 10
	}
	return sum
}
