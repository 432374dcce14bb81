package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkRepo follows the like uniqueness pattern but keeps no cached
// counter; bookmarks are always read from project_bookmarks directly.
type BookmarkRepo struct {
	db *gorm.DB
}

func NewBookmarkRepo(db *gorm.DB) *BookmarkRepo {
	return &BookmarkRepo{db}
}

// AddBookmark returns false when the project is already bookmarked by userID.
func (r *BookmarkRepo) AddBookmark(ctx context.Context, projectID uuid.UUID, userID string) (bool, error) {
	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, models.TargetProject, projectID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProjectBookmark{ProjectID: projectID, UserID: userID})
		if res.Error != nil {
			return fmt.Errorf("insert bookmark: %w", res.Error)
		}
		inserted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// RemoveBookmark returns false when there was nothing to remove.
func (r *BookmarkRepo) RemoveBookmark(ctx context.Context, projectID uuid.UUID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectBookmark{})
	if res.Error != nil {
		return false, fmt.Errorf("delete bookmark: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *BookmarkRepo) IsBookmarked(ctx context.Context, projectID uuid.UUID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProjectBookmark{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return n > 0, nil
}

// ListForUser returns the user's bookmarks, newest first, with the project
// and its owner attached.
func (r *BookmarkRepo) ListForUser(ctx context.Context, userID string) ([]models.ProjectBookmark, error) {
	bookmarks := []models.ProjectBookmark{}
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Project.User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}
