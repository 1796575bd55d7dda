package repository

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	"gorm.io/gorm"
)

type DashboardRepository interface {
	CountAccountsByRole(ctx context.Context, role string) (int64, error)
	CountTeachers(ctx context.Context) (int64, error)
	CountUnusedCodes(ctx context.Context) (int64, error)
	StudentsOf(ctx context.Context, teacherID uint) ([]entity.Account, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountAccountsByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountTeachers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Teacher{}).Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountUnusedCodes(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.RegistrationCode{}).
		Where("is_used = ?", false).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) StudentsOf(ctx context.Context, teacherID uint) ([]entity.Account, error) {
	var students []entity.Account
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND role = ?", teacherID, entity.RoleStudent).
		Order("last_name ASC, first_name ASC").
		Find(&students).Error
	return students, err
}
