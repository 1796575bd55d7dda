package service

import (
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"

	"anoa.com/schoolhub/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const announcementsIndex = "announcements"

type MeiliSearchService interface {
	IndexAnnouncements(announcements ...entity.Announcement) error
	DeleteAnnouncement(id uint) error
	// SearchAnnouncements returns matching announcement ids, best match first.
	SearchAnnouncements(query string, limit int64) ([]uint, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliSearchService(client meilisearch.ServiceManager) MeiliSearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	sortable := []string{"created_at"}
	if _, err := s.client.Index(announcementsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update announcements sortable attributes: %v", err)
		return
	}
	log.Println("Meilisearch indexes initialized")
}

type meiliAnnouncementDoc struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	AuthorName string `json:"author_name"`
	CreatedAt  int64  `json:"created_at"`
}

// plainText strips markup so the index holds searchable words only.
func (s *meiliSearchService) plainText(content string) string {
	for _, tag := range []string{"</p>", "<br>", "<br/>", "</div>", "</li>"} {
		content = strings.ReplaceAll(content, tag, " ")
	}
	text := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(text), " ")
}

func (s *meiliSearchService) IndexAnnouncements(announcements ...entity.Announcement) error {
	if len(announcements) == 0 {
		return nil
	}

	docs := make([]meiliAnnouncementDoc, 0, len(announcements))
	for _, a := range announcements {
		docs = append(docs, meiliAnnouncementDoc{
			ID:         strconv.FormatUint(uint64(a.ID), 10),
			Title:      a.Title,
			Content:    s.plainText(a.Content),
			AuthorName: a.AuthorName,
			CreatedAt:  a.CreatedAt.Unix(),
		})
	}

	task, err := s.client.Index(announcementsIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed %d announcement(s), task id: %d", len(docs), task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeleteAnnouncement(id uint) error {
	_, err := s.client.Index(announcementsIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) SearchAnnouncements(query string, limit int64) ([]uint, error) {
	raw, err := s.client.Index(announcementsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	return decodeHitIDs(*raw)
}

func decodeHitIDs(raw []byte) ([]uint, error) {
	var body struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uint, 0, len(body.Hits))
	for _, hit := range body.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
