package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// counterOwner returns the model whose cached counters track interactions
// with target.
func counterOwner(target models.LikeTarget) (any, error) {
	switch target {
	case models.TargetProject:
		return &models.Project{}, nil
	case models.TargetPost:
		return &models.CommunityPost{}, nil
	default:
		return nil, fmt.Errorf("unknown like target %d", target)
	}
}

// ensureExists fails with errs.ErrNotFound when no row of target has id.
func ensureExists(tx *gorm.DB, target models.LikeTarget, id uuid.UUID) error {
	owner, err := counterOwner(target)
	if err != nil {
		return err
	}

	var n int64
	if err := tx.Model(owner).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("look up %s %s: %w", target, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", target, id, errs.ErrNotFound)
	}
	return nil
}

// incrementCounter adds one to column as a single relative update. It never
// touches updated_at or counts_last_updated.
func incrementCounter(tx *gorm.DB, target models.LikeTarget, id uuid.UUID, column string) error {
	owner, err := counterOwner(target)
	if err != nil {
		return err
	}

	res := tx.Model(owner).Where("id = ?", id).UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment %s on %s %s: %w", column, target, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("increment %s on %s %s: %w", column, target, id, errs.ErrNotFound)
	}
	return nil
}

// decrementCounter subtracts one from column unless it is already zero. A
// guarded miss means the cache had drifted below the true count; it is logged
// and left for the reconciler, the counter stays at zero.
func decrementCounter(tx *gorm.DB, target models.LikeTarget, id uuid.UUID, column string) error {
	owner, err := counterOwner(target)
	if err != nil {
		return err
	}

	res := tx.Model(owner).
		Where("id = ? AND "+column+" > 0", id).
		UpdateColumn(column, gorm.Expr(column+" - ?", 1))
	if res.Error != nil {
		return fmt.Errorf("decrement %s on %s %s: %w", column, target, id, res.Error)
	}
	if res.RowsAffected == 0 {
		log.Warn().
			Str("target", target.String()).
			Str("id", id.String()).
			Str("column", column).
			Msg("Counter already at zero, skipping decrement (drift)")
	}
	return nil
}
