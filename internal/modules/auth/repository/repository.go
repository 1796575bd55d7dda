package repository

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/database"
	"gorm.io/gorm"
)

// Repository reads and writes both principal tables and the registration codes.
// Lookups return gorm.ErrRecordNotFound when nothing matches.
type Repository interface {
	FindAccountByID(ctx context.Context, id uint) (*entity.Account, error)
	FindAccountByUsername(ctx context.Context, username string) (*entity.Account, error)
	FindTeacherByID(ctx context.Context, id uint) (*entity.Teacher, error)
	FindTeacherByUsername(ctx context.Context, username string) (*entity.Teacher, error)

	// UsernameExists and EmailExists look in both principal tables.
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// ClaimIdentity reserves username and email for a new principal. Call it
	// inside Transaction. A concurrent claim on the same name blocks until the
	// other transaction ends and then reports apperror.ErrUsernameTaken or
	// apperror.ErrEmailTaken.
	ClaimIdentity(ctx context.Context, kind entity.PrincipalKind, username, email string) error

	FindCode(ctx context.Context, code string) (*entity.RegistrationCode, error)
	// ConsumeCode marks an unused code as used. It returns
	// apperror.ErrCodeAlreadyUsed when the code was consumed first by someone else.
	ConsumeCode(ctx context.Context, codeID, consumerID uint) error

	CreateAccount(ctx context.Context, account *entity.Account) error
	CreateTeacher(ctx context.Context, teacher *entity.Teacher) error
	UpdateAccountPassword(ctx context.Context, id uint, hash string) error
	UpdateTeacherPassword(ctx context.Context, id uint, hash string) error

	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAccountByID(ctx context.Context, id uint) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindAccountByUsername(ctx context.Context, username string) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindTeacherByID(ctx context.Context, id uint) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.WithContext(ctx).First(&teacher, id).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *repository) FindTeacherByUsername(ctx context.Context, username string) (*entity.Teacher, error) {
	var teacher entity.Teacher
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&teacher).Error; err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.existsInEither(ctx, "username", username)
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.existsInEither(ctx, "email", email)
}

func (r *repository) existsInEither(ctx context.Context, column, value string) (bool, error) {
	for _, model := range []any{&entity.Account{}, &entity.Teacher{}} {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(model).
			Where(column+" = ?", value).
			Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *repository) ClaimIdentity(ctx context.Context, kind entity.PrincipalKind, username, email string) error {
	claims := entity.ClaimsFor(kind, username, email)
	taken := []error{apperror.ErrUsernameTaken, apperror.ErrEmailTaken}

	for i := range claims {
		err := r.db.WithContext(ctx).Create(&claims[i]).Error
		if database.IsUniqueViolation(err) {
			return taken[i]
		}
		if err != nil {
			return err
		}
	}
	return nil
}
