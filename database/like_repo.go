package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

func likeRow(target models.LikeTarget, targetID uuid.UUID, userID string) (any, string, error) {
	switch target {
	case models.TargetProject:
		return &models.ProjectLike{ProjectID: targetID, UserID: userID}, "project_id", nil
	case models.TargetPost:
		return &models.PostLike{PostID: targetID, UserID: userID}, "post_id", nil
	default:
		return nil, "", fmt.Errorf("unknown like target %d", target)
	}
}

// RecordLike inserts the (target, user) like and bumps the cached likeCount
// in the same transaction. It returns false without touching the counter
// when the user already liked the target.
func (r *LikeRepo) RecordLike(ctx context.Context, target models.LikeTarget, targetID uuid.UUID, userID string) (bool, error) {
	row, _, err := likeRow(target, targetID, userID)
	if err != nil {
		return false, err
	}

	inserted := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, target, targetID); err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return fmt.Errorf("insert %s like: %w", target, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		inserted = true
		return incrementCounter(tx, target, targetID, models.ColumnLikeCount)
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// RemoveLike deletes the (target, user) like. The cached likeCount is only
// decremented when a row was actually removed.
func (r *LikeRepo) RemoveLike(ctx context.Context, target models.LikeTarget, targetID uuid.UUID, userID string) (bool, error) {
	row, column, err := likeRow(target, targetID, userID)
	if err != nil {
		return false, err
	}

	removed := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(column+" = ? AND user_id = ?", targetID, userID).Delete(row)
		if res.Error != nil {
			return fmt.Errorf("delete %s like: %w", target, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		removed = true
		return decrementCounter(tx, target, targetID, models.ColumnLikeCount)
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// HasLiked reports whether userID currently likes the target.
func (r *LikeRepo) HasLiked(ctx context.Context, target models.LikeTarget, targetID uuid.UUID, userID string) (bool, error) {
	row, column, err := likeRow(target, targetID, userID)
	if err != nil {
		return false, err
	}

	var n int64
	err = r.db.WithContext(ctx).Model(row).Where(column+" = ? AND user_id = ?", targetID, userID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check %s like: %w", target, err)
	}
	return n > 0, nil
}

// CachedLikeCount reads the stored likeCount of the target without recounting.
func (r *LikeRepo) CachedLikeCount(ctx context.Context, target models.LikeTarget, targetID uuid.UUID) (int, error) {
	owner, err := counterOwner(target)
	if err != nil {
		return 0, err
	}

	var counts []int
	err = r.db.WithContext(ctx).Model(owner).Where("id = ?", targetID).Pluck(models.ColumnLikeCount, &counts).Error
	if err != nil {
		return 0, fmt.Errorf("read %s like count: %w", target, err)
	}
	if len(counts) == 0 {
		return 0, fmt.Errorf("%s %s: %w", target, targetID, errs.ErrNotFound)
	}
	return counts[0], nil
}
