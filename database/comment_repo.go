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

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// RecordComment inserts the comment and increments commentCount on whichever
// parent it references. Comments with zero or two parents are rejected with
// errs.ErrCommentParent.
func (r *CommentRepo) RecordComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	target, parentID, ok := comment.Parent()
	if !ok {
		return nil, errs.ErrCommentParent
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, target, parentID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return incrementCounter(tx, target, parentID, models.ColumnCommentCount)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// RemoveComment deletes the comment when userID owns it and decrements the
// parent's commentCount. The parent is captured before the delete since the
// row is gone afterwards. Absent or foreign comments return false.
func (r *CommentRepo) RemoveComment(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&comment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find comment %s: %w", id, err)
		}

		target, parentID, ok := comment.Parent()
		if !ok {
			return fmt.Errorf("comment %s: %w", id, errs.ErrCommentParent)
		}

		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Comment{})
		if res.Error != nil {
			return fmt.Errorf("delete comment %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		removed = true
		return decrementCounter(tx, target, parentID, models.ColumnCommentCount)
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// ListForTarget returns the comments on a project or post, oldest first, with
// their authors.
func (r *CommentRepo) ListForTarget(ctx context.Context, target models.LikeTarget, targetID uuid.UUID) ([]models.Comment, error) {
	var column string
	switch target {
	case models.TargetProject:
		column = "project_id"
	case models.TargetPost:
		column = "post_id"
	default:
		return nil, fmt.Errorf("unknown comment target %d", target)
	}

	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where(column+" = ?", targetID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list %s comments: %w", target, err)
	}
	return comments, nil
}
