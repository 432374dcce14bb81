package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// CounterRepo is the reconciler's view of the store. Every read is pinned to
// the primary so a lagging replica can never feed an overwrite.
type CounterRepo struct {
	db *gorm.DB
}

func NewCounterRepo(db *gorm.DB) *CounterRepo {
	return &CounterRepo{db}
}

func (r *CounterRepo) primary(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(dbresolver.Write)
}

// ListIDs returns the ids of every project or post, oldest first.
func (r *CounterRepo) ListIDs(ctx context.Context, target models.LikeTarget) ([]uuid.UUID, error) {
	owner, err := counterOwner(target)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := r.primary(ctx).Model(owner).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list %s ids: %w", target, err)
	}
	return ids, nil
}

func (r *CounterRepo) CountLikes(ctx context.Context, target models.LikeTarget, id uuid.UUID) (int, error) {
	row, column, err := likeRow(target, id, "")
	if err != nil {
		return 0, err
	}
	return r.count(ctx, row, column, id)
}

func (r *CounterRepo) CountComments(ctx context.Context, target models.LikeTarget, id uuid.UUID) (int, error) {
	switch target {
	case models.TargetProject:
		return r.count(ctx, &models.Comment{}, "project_id", id)
	case models.TargetPost:
		return r.count(ctx, &models.Comment{}, "post_id", id)
	default:
		return 0, fmt.Errorf("unknown comment target %d", target)
	}
}

func (r *CounterRepo) CountViews(ctx context.Context, projectID uuid.UUID) (int, error) {
	return r.count(ctx, &models.ProjectView{}, "project_id", projectID)
}

func (r *CounterRepo) count(ctx context.Context, model any, column string, id uuid.UUID) (int, error) {
	var n int64
	if err := r.primary(ctx).Model(model).Where(column+" = ?", id).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s = %s: %w", column, id, err)
	}
	return int(n), nil
}

// WriteProjectCounts overwrites the project's cached counters and stamps
// counts_last_updated. updated_at is left alone.
func (r *CounterRepo) WriteProjectCounts(ctx context.Context, id uuid.UUID, counts models.ProjectCounts) error {
	return r.write(ctx, models.TargetProject, id, map[string]any{
		models.ColumnLikeCount:         counts.LikeCount,
		models.ColumnCommentCount:      counts.CommentCount,
		models.ColumnViewCount:         counts.ViewCount,
		models.ColumnCountsLastUpdated: counts.CountsLastUpdated,
	})
}

// WritePostCounts overwrites the post's cached counters and stamps
// counts_last_updated.
func (r *CounterRepo) WritePostCounts(ctx context.Context, id uuid.UUID, counts models.PostCounts) error {
	return r.write(ctx, models.TargetPost, id, map[string]any{
		models.ColumnLikeCount:         counts.LikeCount,
		models.ColumnCommentCount:      counts.CommentCount,
		models.ColumnCountsLastUpdated: counts.CountsLastUpdated,
	})
}

func (r *CounterRepo) write(ctx context.Context, target models.LikeTarget, id uuid.UUID, columns map[string]any) error {
	owner, err := counterOwner(target)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(owner).Where("id = ?", id).UpdateColumns(columns)
	if res.Error != nil {
		return fmt.Errorf("write %s %s counts: %w", target, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("write %s %s counts: %w", target, id, errs.ErrNotFound)
	}
	return nil
}
