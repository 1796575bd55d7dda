// Package service answers which students belong to which teacher. The
// classroom modules use it to scope every teacher action to the teacher's
// own students.
package service

import (
	"context"
	"errors"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/roster/repository"
	"anoa.com/schoolhub/pkg/apperror"
	"gorm.io/gorm"
)

type RosterService interface {
	// Students lists the teacher's students. Only teachers have a roster.
	Students(ctx context.Context, teacher *entity.Principal) ([]entity.Account, error)
	// StudentOf returns the student when it is on the teacher's roster.
	// Admins may reach any student.
	StudentOf(ctx context.Context, actor *entity.Principal, studentID uint) (*entity.Account, error)
	// Student reloads the signed-in student, including the teacher link.
	Student(ctx context.Context, student *entity.Principal) (*entity.Account, error)
	// TeacherOf returns the student's teacher, or nil when none is assigned.
	TeacherOf(ctx context.Context, student *entity.Account) (*entity.Teacher, error)
}

type rosterService struct {
	repo repository.RosterRepository
}

func NewRosterService(repo repository.RosterRepository) RosterService {
	return &rosterService{repo: repo}
}

func (s *rosterService) Students(ctx context.Context, teacher *entity.Principal) ([]entity.Account, error) {
	if teacher == nil || !teacher.IsTeacher() {
		return nil, apperror.ErrForbidden
	}
	students, err := s.repo.StudentsOf(ctx, teacher.ID())
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return students, nil
}

func (s *rosterService) StudentOf(ctx context.Context, actor *entity.Principal, studentID uint) (*entity.Account, error) {
	if actor == nil || !(actor.IsTeacher() || actor.IsAdmin()) {
		return nil, apperror.ErrForbidden
	}
	student, err := s.repo.FindStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Storage(err)
	}
	if actor.IsAdmin() {
		return student, nil
	}
	if student.TeacherID == nil || *student.TeacherID != actor.ID() {
		return nil, apperror.ErrForbidden
	}
	return student, nil
}

func (s *rosterService) Student(ctx context.Context, student *entity.Principal) (*entity.Account, error) {
	if student == nil || !student.IsStudent() {
		return nil, apperror.ErrForbidden
	}
	account, err := s.repo.FindStudent(ctx, student.ID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, apperror.Storage(err)
	}
	return account, nil
}

func (s *rosterService) TeacherOf(ctx context.Context, student *entity.Account) (*entity.Teacher, error) {
	if student == nil || student.TeacherID == nil {
		return nil, nil
	}
	teacher, err := s.repo.FindTeacher(ctx, *student.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Storage(err)
	}
	return teacher, nil
}
