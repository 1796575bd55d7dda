package repository

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	// Upsert stores the record, replacing the grade already given for the
	// same student, subject, term and academic year.
	Upsert(ctx context.Context, record *entity.ProgressRecord) error
	ByStudent(ctx context.Context, studentID uint) ([]entity.ProgressRecord, error)
	RecentByTeacher(ctx context.Context, teacherID uint, limit int) ([]entity.ProgressRecord, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, record *entity.ProgressRecord) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"}, {Name: "subject"}, {Name: "term"}, {Name: "academic_year"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"teacher_id", "grade", "remarks", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return err
	}
	var saved entity.ProgressRecord
	err = db.Where("student_id = ? AND subject = ? AND term = ? AND academic_year = ?",
		record.StudentID, record.Subject, record.Term, record.AcademicYear).
		First(&saved).Error
	if err != nil {
		return err
	}
	*record = saved
	return nil
}

func (r *progressRepository) ByStudent(ctx context.Context, studentID uint) ([]entity.ProgressRecord, error) {
	var records []entity.ProgressRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("academic_year DESC, term ASC, subject ASC").
		Find(&records).Error
	return records, err
}

func (r *progressRepository) RecentByTeacher(ctx context.Context, teacherID uint, limit int) ([]entity.ProgressRecord, error) {
	var records []entity.ProgressRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("teacher_id = ?", teacherID).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
