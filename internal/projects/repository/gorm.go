package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
)

// projectModel maps the projects table for gorm.
type projectModel struct {
	ID             string `gorm:"primaryKey;type:text"`
	Name           string `gorm:"not null"`
	Description    *string
	Status         string    `gorm:"not null;default:active"`
	RepositoryLink *string   `gorm:"column:repository_link"`
	LocalPath      *string   `gorm:"column:local_path"`
	PersonalNotes  *string   `gorm:"column:personal_notes"`
	AttachmentURL  *string   `gorm:"column:attachment_url"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

func (projectModel) TableName() string { return Table }

func (m projectModel) toDomain() *domain.Project {
	return &domain.Project{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Status:         domain.StatusFromStore(m.Status),
		RepositoryLink: m.RepositoryLink,
		LocalPath:      m.LocalPath,
		PersonalNotes:  m.PersonalNotes,
		AttachmentURL:  m.AttachmentURL,
		CreatedAt:      m.CreatedAt,
	}
}

// OpenSQLite opens (and migrates) a SQLite database for GormStore. The
// special path ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&projectModel{})
}

// GormStore is the local, file-backed record store.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) List(ctx context.Context) ([]domain.Project, error) {
	var models []projectModel
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(models))
	for _, m := range models {
		out = append(out, *m.toDomain())
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	var m projectModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (s *GormStore) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	m := projectModel{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    domain.Nullable(in.Description),
		Status:         string(in.Status),
		RepositoryLink: domain.Nullable(in.RepositoryLink),
		LocalPath:      domain.Nullable(in.LocalPath),
		PersonalNotes:  domain.Nullable(in.PersonalNotes),
		AttachmentURL:  domain.Nullable(in.AttachmentURL),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (s *GormStore) Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	in, err := in.NormalizeStored()
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&projectModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":            in.Name,
		"description":     domain.Nullable(in.Description),
		"status":          string(in.Status),
		"repository_link": domain.Nullable(in.RepositoryLink),
		"local_path":      domain.Nullable(in.LocalPath),
		"personal_notes":  domain.Nullable(in.PersonalNotes),
		"attachment_url":  domain.Nullable(in.AttachmentURL),
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&projectModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
