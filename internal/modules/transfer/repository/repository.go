package repository

import (
	"context"
	"errors"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/pkg/database"
	"gorm.io/gorm"
)

// ErrPendingExists reports a second pending request for the same student.
// Number collisions surface the same way; the caller asks again.
var ErrPendingExists = errors.New("transfer request already pending")

type TransferRepository interface {
	Create(ctx context.Context, r *entity.TransferRequest) error
	FindByID(ctx context.Context, id uint) (*entity.TransferRequest, error)
	ByStudent(ctx context.Context, studentID uint) ([]entity.TransferRequest, error)
	HasPending(ctx context.Context, studentID uint) (bool, error)
	// Queue lists requests newest first. A non-nil teacherID keeps only that
	// teacher's students.
	Queue(ctx context.Context, teacherID *uint) ([]entity.TransferRequest, error)
	// Review stores the decision on a pending request. It returns
	// gorm.ErrRecordNotFound when the request was already decided.
	Review(ctx context.Context, r *entity.TransferRequest) error
}

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, req *entity.TransferRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if database.IsUniqueViolation(err) {
		return ErrPendingExists
	}
	return err
}

func (r *transferRepository) FindByID(ctx context.Context, id uint) (*entity.TransferRequest, error) {
	var req entity.TransferRequest
	err := r.db.WithContext(ctx).Preload("Student").First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *transferRepository) ByStudent(ctx context.Context, studentID uint) ([]entity.TransferRequest, error) {
	var reqs []entity.TransferRequest
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *transferRepository) HasPending(ctx context.Context, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.TransferRequest{}).
		Where("student_id = ? AND status = ?", studentID, entity.TransferPending).
		Count(&count).Error
	return count > 0, err
}

func (r *transferRepository) Queue(ctx context.Context, teacherID *uint) ([]entity.TransferRequest, error) {
	var reqs []entity.TransferRequest
	query := r.db.WithContext(ctx).Preload("Student")
	if teacherID != nil {
		query = query.
			Joins("JOIN accounts ON accounts.id = transfer_requests.student_id").
			Where("accounts.teacher_id = ?", *teacherID)
	}
	err := query.
		Order("CASE WHEN transfer_requests.status = 'pending' THEN 0 ELSE 1 END").
		Order("transfer_requests.created_at DESC, transfer_requests.id DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *transferRepository) Review(ctx context.Context, req *entity.TransferRequest) error {
	result := r.db.WithContext(ctx).
		Model(&entity.TransferRequest{}).
		Where("id = ? AND status = ?", req.ID, entity.TransferPending).
		Updates(map[string]any{
			"status":          req.Status,
			"certificate_url": req.CertificateURL,
			"review_note":     req.ReviewNote,
			"reviewer_kind":   req.ReviewerKind,
			"reviewer_id":     req.ReviewerID,
			"reviewed_at":     req.ReviewedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
