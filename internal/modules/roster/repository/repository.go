package repository

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	"gorm.io/gorm"
)

// RosterRepository reads the teacher to student relation.
type RosterRepository interface {
	StudentsOf(ctx context.Context, teacherID uint) ([]entity.Account, error)
	FindStudent(ctx context.Context, id uint) (*entity.Account, error)
	FindTeacher(ctx context.Context, id uint) (*entity.Teacher, error)
}

type rosterRepository struct {
	db *gorm.DB
}

func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) StudentsOf(ctx context.Context, teacherID uint) ([]entity.Account, error) {
	var students []entity.Account
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND role = ?", teacherID, entity.RoleStudent).
		Order("class_name ASC, last_name ASC, first_name ASC").
		Find(&students).Error
	return students, err
}

func (r *rosterRepository) FindStudent(ctx context.Context, id uint) (*entity.Account, error) {
	var student entity.Account
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, entity.RoleStudent).
		First(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *rosterRepository) FindTeacher(ctx context.Context, id uint) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.WithContext(ctx).First(&teacher, id).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}
