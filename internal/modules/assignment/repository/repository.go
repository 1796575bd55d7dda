package repository

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.Assignment) error
	FindByID(ctx context.Context, id uint) (*entity.Assignment, error)
	// Delete removes the assignment together with its submissions.
	Delete(ctx context.Context, id uint) error
	ListByTeacher(ctx context.Context, teacherID uint) ([]entity.Assignment, error)
	// ListForClass returns the teacher's assignments aimed at className or at
	// every class, latest due date first.
	ListForClass(ctx context.Context, teacherID uint, className string) ([]entity.Assignment, error)
	CountSubmissions(ctx context.Context, assignmentIDs []uint) (map[uint]int64, error)

	Submissions(ctx context.Context, assignmentID uint) ([]entity.AssignmentSubmission, error)
	SubmissionsByStudent(ctx context.Context, studentID uint, assignmentIDs []uint) ([]entity.AssignmentSubmission, error)
	FindSubmission(ctx context.Context, assignmentID, studentID uint) (*entity.AssignmentSubmission, error)
	FindSubmissionByID(ctx context.Context, id uint) (*entity.AssignmentSubmission, error)
	// UpsertSubmission inserts the submission or replaces the student's
	// previous hand-in for the same assignment.
	UpsertSubmission(ctx context.Context, s *entity.AssignmentSubmission) error
	SaveGrade(ctx context.Context, s *entity.AssignmentSubmission) error
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uint) (*entity.Assignment, error) {
	var a entity.Assignment
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).Delete(&entity.AssignmentSubmission{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Assignment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *assignmentRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]entity.Assignment, error) {
	var items []entity.Assignment
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("due_date DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

func (r *assignmentRepository) ListForClass(ctx context.Context, teacherID uint, className string) ([]entity.Assignment, error) {
	var items []entity.Assignment
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("teacher_id = ? AND (class_name = ? OR class_name = ?)", teacherID, className, "").
		Order("due_date DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

func (r *assignmentRepository) CountSubmissions(ctx context.Context, assignmentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(assignmentIDs))
	if len(assignmentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AssignmentID uint
		Total        int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.AssignmentSubmission{}).
		Select("assignment_id, COUNT(*) AS total").
		Where("assignment_id IN ?", assignmentIDs).
		Group("assignment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AssignmentID] = row.Total
	}
	return counts, nil
}

func (r *assignmentRepository) Submissions(ctx context.Context, assignmentID uint) ([]entity.AssignmentSubmission, error) {
	var items []entity.AssignmentSubmission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&items).Error
	return items, err
}

func (r *assignmentRepository) SubmissionsByStudent(ctx context.Context, studentID uint, assignmentIDs []uint) ([]entity.AssignmentSubmission, error) {
	var items []entity.AssignmentSubmission
	if len(assignmentIDs) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id IN ?", studentID, assignmentIDs).
		Find(&items).Error
	return items, err
}

func (r *assignmentRepository) FindSubmission(ctx context.Context, assignmentID, studentID uint) (*entity.AssignmentSubmission, error) {
	var s entity.AssignmentSubmission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *assignmentRepository) FindSubmissionByID(ctx context.Context, id uint) (*entity.AssignmentSubmission, error) {
	var s entity.AssignmentSubmission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Student").
		First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *assignmentRepository) UpsertSubmission(ctx context.Context, s *entity.AssignmentSubmission) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"file_url", "comments", "status", "late", "submitted_at"}),
		}).
		Create(s).Error
	if err != nil {
		return err
	}
	saved, err := r.FindSubmission(ctx, s.AssignmentID, s.StudentID)
	if err != nil {
		return err
	}
	*s = *saved
	return nil
}

func (r *assignmentRepository) SaveGrade(ctx context.Context, s *entity.AssignmentSubmission) error {
	return r.db.WithContext(ctx).
		Model(&entity.AssignmentSubmission{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"grade":     s.Grade,
			"feedback":  s.Feedback,
			"status":    s.Status,
			"graded_at": s.GradedAt,
		}).Error
}
