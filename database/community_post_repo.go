package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"gorm.io/gorm"
)

type CommunityPostRepo struct {
	db *gorm.DB
}

func NewCommunityPostRepo(db *gorm.DB) *CommunityPostRepo {
	return &CommunityPostRepo{db}
}

// List returns one page of posts, pinned posts first, then newest first.
func (r *CommunityPostRepo) List(ctx context.Context, page, limit int) ([]models.CommunityPost, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.CommunityPost{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count community posts: %w", err)
	}

	limit, offset := paginate(page, limit)
	posts := []models.CommunityPost{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("is_pinned DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list community posts: %w", err)
	}
	return posts, total, nil
}

func (r *CommunityPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	var post models.CommunityPost
	err := r.db.WithContext(ctx).Preload("User").First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("community post %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *CommunityPostRepo) Add(ctx context.Context, post *models.CommunityPost) error {
	post.LikeCount, post.CommentCount = 0, 0
	post.CountsLastUpdated = nil
	return r.db.WithContext(ctx).Create(post).Error
}

// Update writes title and content only; pinning is not an author action.
func (r *CommunityPostRepo) Update(ctx context.Context, post *models.CommunityPost) error {
	res := r.db.WithContext(ctx).Model(post).
		Select("title", "content", "updated_at").
		Updates(post)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("community post %s: %w", post.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete removes a post together with its likes and comments.
func (r *CommunityPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.CommunityPost{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("community post %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
