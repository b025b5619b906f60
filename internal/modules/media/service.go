package media

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/forexfactory/site/internal/models"
	"gorm.io/gorm"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrNotFound      = errors.New("media not found")
)

// Media kinds accepted by the list filter.
const (
	KindAll   = "all"
	KindImage = "image"
	KindFile  = "file"
)

var imageExts = []string{".avif", ".gif", ".jpeg", ".jpg", ".png", ".svg", ".webp"}

// imageClause matches file names with an image extension.
var imageClause, imageArgs = func() (string, []interface{}) {
	parts := make([]string, len(imageExts))
	args := make([]interface{}, len(imageExts))
	for i, ext := range imageExts {
		parts[i] = "LOWER(file_name) LIKE ?"
		args[i] = "%" + ext
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}()

type CreateMediaDTO struct {
	FileName   string `json:"fileName"`
	FilePath   string `json:"filePath"`
	UploadedBy uint   `json:"uploadedBy"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the newest media first with the uploader attached. The kind
// filter runs in SQL on the file extension.
func (s *Service) List(ctx context.Context, kind string, limit int) ([]models.Media, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Media{})
	switch kind {
	case KindImage:
		q = q.Where(imageClause, imageArgs...)
	case KindFile:
		q = q.Where("NOT "+imageClause, imageArgs...)
	}

	var rows []models.Media
	if err := q.Order("uploaded_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := s.attachUsers(db, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) attachUsers(db *gorm.DB, rows []models.Media) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UploadedBy)
	}
	var users []models.UserSummary
	if err := db.Model(&models.User{}).Select("id, name, email").Where("id IN ?", ids).Scan(&users).Error; err != nil {
		return err
	}
	byID := make(map[uint]*models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range rows {
		rows[i].User = byID[rows[i].UploadedBy]
	}
	return nil
}

func (s *Service) Create(ctx context.Context, dto *CreateMediaDTO) (*models.Media, error) {
	name := strings.TrimSpace(dto.FileName)
	filePath := strings.TrimSpace(dto.FilePath)
	if name == "" || filePath == "" || dto.UploadedBy == 0 {
		return nil, ErrMissingFields
	}
	m := models.Media{FileName: name, FilePath: filePath, UploadedBy: dto.UploadedBy}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes the record and returns it so the caller can clean up storage.
func (s *Service) Delete(ctx context.Context, id uint) (*models.Media, error) {
	var m models.Media
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// IsImage guesses from the file extension.
func IsImage(name string) bool {
	return slices.Contains(imageExts, strings.ToLower(path.Ext(name)))
}
