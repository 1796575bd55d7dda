package repository

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/pkg/apperror"
	"gorm.io/gorm"
)

type AdminRepository interface {
	ListCodes(ctx context.Context) ([]entity.RegistrationCode, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CreateCode(ctx context.Context, code *entity.RegistrationCode) error
	// DeleteUnusedCode removes the code only while it is unused.
	DeleteUnusedCode(ctx context.Context, id uint) error

	ListAccounts(ctx context.Context) ([]entity.Account, error)
	ListTeachers(ctx context.Context) ([]entity.Teacher, error)
	FindAccountByID(ctx context.Context, id uint) (*entity.Account, error)
	FindTeacherByID(ctx context.Context, id uint) (*entity.Teacher, error)
	UpdateAccountPassword(ctx context.Context, id uint, hash string) error
	UpdateTeacherPassword(ctx context.Context, id uint, hash string) error
	// SetTeacher links a student to a teacher. A nil teacherID unassigns.
	SetTeacher(ctx context.Context, accountID uint, teacherID *uint) error
	// DeleteAccount also removes the student's classroom records.
	DeleteAccount(ctx context.Context, id uint) error
	// DeleteTeacher detaches the teacher's students and removes the
	// teacher's assignments before removing the row.
	DeleteTeacher(ctx context.Context, id uint) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) ListCodes(ctx context.Context) ([]entity.RegistrationCode, error) {
	var codes []entity.RegistrationCode
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&codes).Error
	return codes, err
}

func (r *adminRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.RegistrationCode{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *adminRepository) CreateCode(ctx context.Context, code *entity.RegistrationCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *adminRepository) DeleteUnusedCode(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_used = ?", id, false).
		Delete(&entity.RegistrationCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var code entity.RegistrationCode
	if err := r.db.WithContext(ctx).First(&code, id).Error; err != nil {
		return err
	}
	return apperror.ErrCodeAlreadyUsed
}

func (r *adminRepository) ListAccounts(ctx context.Context) ([]entity.Account, error) {
	var accounts []entity.Account
	err := r.db.WithContext(ctx).Order("username ASC").Find(&accounts).Error
	return accounts, err
}

func (r *adminRepository) ListTeachers(ctx context.Context) ([]entity.Teacher, error) {
	var teachers []entity.Teacher
	err := r.db.WithContext(ctx).Order("username ASC").Find(&teachers).Error
	return teachers, err
}

func (r *adminRepository) FindAccountByID(ctx context.Context, id uint) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *adminRepository) FindTeacherByID(ctx context.Context, id uint) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.WithContext(ctx).First(&teacher, id).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *adminRepository) UpdateAccountPassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *adminRepository) UpdateTeacherPassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Teacher{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *adminRepository) SetTeacher(ctx context.Context, accountID uint, teacherID *uint) error {
	return r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where("id = ?", accountID).
		Update("teacher_id", teacherID).Error
}

func (r *adminRepository) DeleteAccount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account entity.Account
		if err := tx.First(&account, id).Error; err != nil {
			return err
		}
		for _, model := range []any{
			&entity.AssignmentSubmission{},
			&entity.AttendanceRecord{},
			&entity.ProgressRecord{},
			&entity.TransferRequest{},
		} {
			if err := tx.Where("student_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&account).Error; err != nil {
			return err
		}
		return releaseClaims(tx, account.Username, account.Email)
	})
}

func (r *adminRepository) DeleteTeacher(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var teacher entity.Teacher
		if err := tx.First(&teacher, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Account{}).
			Where("teacher_id = ?", id).
			Update("teacher_id", nil).Error; err != nil {
			return err
		}
		owned := tx.Model(&entity.Assignment{}).Select("id").Where("teacher_id = ?", id)
		if err := tx.Where("assignment_id IN (?)", owned).Delete(&entity.AssignmentSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("teacher_id = ?", id).Delete(&entity.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&teacher).Error; err != nil {
			return err
		}
		return releaseClaims(tx, teacher.Username, teacher.Email)
	})
}

// releaseClaims frees a deleted principal's username and email for reuse.
func releaseClaims(tx *gorm.DB, username, email string) error {
	return tx.
		Where("claim_key IN ?", []string{entity.UsernameClaim(username), entity.EmailClaim(email)}).
		Delete(&entity.IdentityClaim{}).Error
}
