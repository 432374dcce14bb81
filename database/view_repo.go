package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/models"
	"gorm.io/gorm"
)

type ViewRepo struct {
	db *gorm.DB
}

func NewViewRepo(db *gorm.DB) *ViewRepo {
	return &ViewRepo{db}
}

// RecordView appends a view row and increments viewCount. Views are not
// deduplicated: every call counts.
func (r *ViewRepo) RecordView(ctx context.Context, projectID uuid.UUID, userID *string, ipAddress *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, models.TargetProject, projectID); err != nil {
			return err
		}

		view := models.ProjectView{ProjectID: projectID, UserID: userID, IPAddress: ipAddress}
		if err := tx.Create(&view).Error; err != nil {
			return fmt.Errorf("insert project view: %w", err)
		}
		return incrementCounter(tx, models.TargetProject, projectID, models.ColumnViewCount)
	})
}
