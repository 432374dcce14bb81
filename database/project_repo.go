package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"gorm.io/gorm"
)

const (
	SortRecent  = "recent"
	SortPopular = "popular"
	SortViews   = "views"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProjectFilter narrows and orders a project listing. Zero values mean no
// filtering, most recent first, first page.
type ProjectFilter struct {
	Query    string
	Tag      string
	Featured *bool
	Sort     string
	Page     int
	Limit    int
}

func (f ProjectFilter) pagination() (limit, offset int) {
	return paginate(f.Page, f.Limit)
}

func paginate(page, limit int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// List returns one page of projects matching the filter plus the total number
// of matches. Counters are served as cached; nothing is recounted here.
func (r *ProjectRepo) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(short_description) LIKE ? ESCAPE '\'`, like, like)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = r.whereHasTag(query, tag)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	switch filter.Sort {
	case SortPopular:
		query = query.Order("like_count DESC")
	case SortViews:
		query = query.Order("view_count DESC")
	}
	query = query.Order("created_at DESC")

	limit, offset := filter.pagination()
	projects := []models.Project{}
	if err := query.Preload("User").Limit(limit).Offset(offset).Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

// whereHasTag matches projects whose tags array contains tag exactly. The
// JSON containment syntax differs between Postgres and SQLite.
func (r *ProjectRepo) whereHasTag(query *gorm.DB, tag string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		encoded, _ := json.Marshal([]string{tag})
		return query.Where("tags @> ?::jsonb", string(encoded))
	}
	return query.Where("EXISTS (SELECT 1 FROM json_each(projects.tags) WHERE json_each.value = ?)", tag)
}

// ListByOwner returns every project of userID, newest first.
func (r *ProjectRepo) ListByOwner(ctx context.Context, userID string) ([]models.Project, error) {
	projects := []models.Project{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects of %s: %w", userID, err)
	}
	return projects, nil
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).Preload("User").First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("project %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project. Cached counters always start at zero.
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	project.ViewCount, project.LikeCount, project.CommentCount = 0, 0, 0
	project.CountsLastUpdated = nil
	return r.db.WithContext(ctx).Create(project).Error
}

// Update writes the editable fields of project. Cached counters, ownership
// and the featured flag are never taken from the caller.
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	res := r.db.WithContext(ctx).Model(project).
		Select("title", "short_description", "full_description", "thumbnail_url", "demo_url", "source_url", "tags", "tech_stack", "updated_at").
		Updates(project)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project %s: %w", project.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete removes a project; likes, bookmarks, comments and views go with it
// through ON DELETE CASCADE.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
