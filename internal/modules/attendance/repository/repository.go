package repository

import (
	"context"
	"time"

	"anoa.com/schoolhub/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository interface {
	ForDay(ctx context.Context, studentIDs []uint, day time.Time) ([]entity.AttendanceRecord, error)
	// Upsert writes the records, replacing any earlier status for the same
	// student and day.
	Upsert(ctx context.Context, records []entity.AttendanceRecord) error
	ByStudent(ctx context.Context, studentID uint) ([]entity.AttendanceRecord, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ForDay(ctx context.Context, studentIDs []uint, day time.Time) ([]entity.AttendanceRecord, error) {
	var records []entity.AttendanceRecord
	if len(studentIDs) == 0 {
		return records, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id IN ? AND date = ?", studentIDs, day).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepository) Upsert(ctx context.Context, records []entity.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "updated_at"}),
		}).
		Create(&records).Error
}

func (r *attendanceRepository) ByStudent(ctx context.Context, studentID uint) ([]entity.AttendanceRecord, error) {
	var records []entity.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&records).Error
	return records, err
}
