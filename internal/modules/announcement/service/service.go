package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"math"
	"strings"

	"anoa.com/schoolhub/internal/entity"
	"anoa.com/schoolhub/internal/modules/announcement/dto"
	"anoa.com/schoolhub/internal/modules/announcement/repository"
	search "anoa.com/schoolhub/internal/modules/search/service"
	"anoa.com/schoolhub/pkg/apperror"
	"anoa.com/schoolhub/pkg/logger"
	"anoa.com/schoolhub/pkg/storage"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// StorageCategory is the storage folder for announcement attachments.
	StorageCategory = "announcements"
	// Channel is the Redis channel new announcements are published on.
	Channel = "announcements"

	defaultPageSize = 10
	searchLimit     = 20
)

type AnnouncementService interface {
	Create(ctx context.Context, author *entity.Principal, input dto.AnnouncementInput, file *dto.Attachment) (*entity.Announcement, error)
	Update(ctx context.Context, actor *entity.Principal, id uint, input dto.AnnouncementInput, file *dto.Attachment) (*entity.Announcement, error)
	Delete(ctx context.Context, actor *entity.Principal, id uint) error
	Get(ctx context.Context, id uint) (*entity.Announcement, error)
	List(ctx context.Context, filter dto.ListFilter) (*dto.PaginatedAnnouncementResponse, error)
	Latest(ctx context.Context, n int) ([]entity.Announcement, error)
	Search(ctx context.Context, query string) ([]entity.Announcement, error)
	Count(ctx context.Context) (int64, error)
	// Reindex pushes every announcement to the search index.
	Reindex(ctx context.Context) (int, error)
	CanEdit(actor *entity.Principal, a *entity.Announcement) bool
}

type announcementService struct {
	repo        repository.AnnouncementRepository
	storage     storage.FileStorage
	search      search.MeiliSearchService
	redisClient *redis.Client
	content     *bluemonday.Policy
	plain       *bluemonday.Policy
}

// NewAnnouncementService accepts a nil search service and a nil Redis client;
// indexing and live publishing are then skipped.
func NewAnnouncementService(repo repository.AnnouncementRepository, fileStorage storage.FileStorage, searchSvc search.MeiliSearchService, redisClient *redis.Client) AnnouncementService {
	return &announcementService{
		repo:        repo,
		storage:     fileStorage,
		search:      searchSvc,
		redisClient: redisClient,
		content:     bluemonday.UGCPolicy(),
		plain:       bluemonday.StrictPolicy(),
	}
}

func canAuthor(p *entity.Principal) bool {
	return p != nil && p.HasRole(entity.RoleAdmin, entity.RoleTeacher)
}

// CanEdit lets admins edit everything and teachers their own announcements.
func (s *announcementService) CanEdit(actor *entity.Principal, a *entity.Announcement) bool {
	if actor == nil || a == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.IsTeacher() && a.AuthorKind == entity.KindTeacher && a.AuthorID == actor.ID()
}

func (s *announcementService) clean(input dto.AnnouncementInput) (string, string, error) {
	title := strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(input.Title)))
	content := strings.TrimSpace(s.content.Sanitize(input.Content))
	if title == "" || content == "" {
		return "", "", apperror.ErrInvalidInput
	}
	return title, content, nil
}

func (s *announcementService) saveAttachment(ctx context.Context, file *dto.Attachment) (*string, error) {
	if file == nil || file.Reader == nil {
		return nil, nil
	}
	url, err := s.storage.Save(ctx, StorageCategory, file.FileName, file.Reader)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return &url, nil
}

func (s *announcementService) dropAttachment(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.storage.Delete(ctx, *url); err != nil {
		logger.Warnf("failed to delete attachment %s: %v", *url, err)
	}
}

func (s *announcementService) Create(ctx context.Context, author *entity.Principal, input dto.AnnouncementInput, file *dto.Attachment) (*entity.Announcement, error) {
	if !canAuthor(author) {
		return nil, apperror.ErrForbidden
	}
	title, content, err := s.clean(input)
	if err != nil {
		return nil, err
	}

	attachmentURL, err := s.saveAttachment(ctx, file)
	if err != nil {
		return nil, err
	}

	authorName := author.FullName()
	if authorName == "" {
		authorName = author.Username()
	}

	a := &entity.Announcement{
		Title:         title,
		Content:       content,
		AttachmentURL: attachmentURL,
		AuthorKind:    author.Kind(),
		AuthorID:      author.ID(),
		AuthorName:    authorName,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.dropAttachment(ctx, attachmentURL)
		return nil, apperror.Storage(err)
	}

	s.index(*a)
	s.publish(ctx, a)
	return a, nil
}

func (s *announcementService) Update(ctx context.Context, actor *entity.Principal, id uint, input dto.AnnouncementInput, file *dto.Attachment) (*entity.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.CanEdit(actor, a) {
		return nil, apperror.ErrForbidden
	}
	title, content, err := s.clean(input)
	if err != nil {
		return nil, err
	}

	newURL, err := s.saveAttachment(ctx, file)
	if err != nil {
		return nil, err
	}

	oldURL := a.AttachmentURL
	a.Title = title
	a.Content = content
	if newURL != nil {
		a.AttachmentURL = newURL
	}

	if err := s.repo.Update(ctx, a); err != nil {
		s.dropAttachment(ctx, newURL)
		return nil, apperror.Storage(err)
	}
	if newURL != nil {
		s.dropAttachment(ctx, oldURL)
	}

	s.index(*a)
	return a, nil
}

func (s *announcementService) Delete(ctx context.Context, actor *entity.Principal, id uint) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.CanEdit(actor, a) {
		return apperror.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return apperror.Storage(err)
	}

	s.dropAttachment(ctx, a.AttachmentURL)
	if s.search != nil {
		if err := s.search.DeleteAnnouncement(id); err != nil {
			logger.Warnf("failed to remove announcement %d from search index: %v", id, err)
		}
	}
	return nil
}

func (s *announcementService) Get(ctx context.Context, id uint) (*entity.Announcement, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Storage(err)
	}
	return a, nil
}

func (s *announcementService) List(ctx context.Context, filter dto.ListFilter) (*dto.PaginatedAnnouncementResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}

	items, total, err := s.repo.List(ctx, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	data := make([]dto.AnnouncementResponse, 0, len(items))
	for i := range items {
		data = append(data, dto.NewAnnouncementResponse(&items[i]))
	}

	return &dto.PaginatedAnnouncementResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: filter.Page,
			TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
			TotalItems:  total,
			Limit:       filter.Limit,
		},
	}, nil
}

func (s *announcementService) Latest(ctx context.Context, n int) ([]entity.Announcement, error) {
	items, _, err := s.repo.List(ctx, n, 0)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return items, nil
}

// Search asks Meilisearch first and falls back to a LIKE query when the
// index is not configured or unreachable.
func (s *announcementService) Search(ctx context.Context, query string) ([]entity.Announcement, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Latest(ctx, searchLimit)
	}

	if s.search != nil {
		ids, err := s.search.SearchAnnouncements(query, searchLimit)
		if err == nil {
			items, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, apperror.Storage(err)
			}
			return items, nil
		}
		logger.Warnf("meilisearch query failed, falling back to database: %v", err)
	}

	items, err := s.repo.SearchLike(ctx, query, searchLimit)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return items, nil
}

func (s *announcementService) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperror.Storage(err)
	}
	return n, nil
}

func (s *announcementService) Reindex(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, nil
	}
	items, err := s.repo.All(ctx)
	if err != nil {
		return 0, apperror.Storage(err)
	}
	if err := s.search.IndexAnnouncements(items...); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (s *announcementService) index(a entity.Announcement) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexAnnouncements(a); err != nil {
		logger.Warnf("failed to index announcement %d: %v", a.ID, err)
	}
}

func (s *announcementService) publish(ctx context.Context, a *entity.Announcement) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(dto.NewAnnouncementResponse(a))
	if err != nil {
		return
	}
	if err := s.redisClient.Publish(ctx, Channel, payload).Err(); err != nil {
		logger.Warnf("failed to publish announcement %d: %v", a.ID, err)
	}
}
