package repository

import (
	"context"

	"anoa.com/schoolhub/internal/entity"
	"gorm.io/gorm"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, a *entity.Announcement) error
	Update(ctx context.Context, a *entity.Announcement) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*entity.Announcement, error)
	// FindByIDs keeps the order of ids.
	FindByIDs(ctx context.Context, ids []uint) ([]entity.Announcement, error)
	List(ctx context.Context, limit, offset int) ([]entity.Announcement, int64, error)
	SearchLike(ctx context.Context, query string, limit int) ([]entity.Announcement, error)
	All(ctx context.Context) ([]entity.Announcement, error)
	Count(ctx context.Context) (int64, error)
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, a *entity.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *announcementRepository) Update(ctx context.Context, a *entity.Announcement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Announcement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *announcementRepository) FindByID(ctx context.Context, id uint) (*entity.Announcement, error) {
	var a entity.Announcement
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.Announcement, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []entity.Announcement
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]entity.Announcement, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	ordered := make([]entity.Announcement, 0, len(found))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

func (r *announcementRepository) List(ctx context.Context, limit, offset int) ([]entity.Announcement, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Announcement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.Announcement
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *announcementRepository) SearchLike(ctx context.Context, query string, limit int) ([]entity.Announcement, error) {
	pattern := "%" + query + "%"
	var items []entity.Announcement
	if err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *announcementRepository) All(ctx context.Context) ([]entity.Announcement, error) {
	var items []entity.Announcement
	if err := r.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *announcementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Announcement{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
