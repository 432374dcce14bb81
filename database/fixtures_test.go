package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a migrated in-memory SQLite database private to the test.
// A single connection keeps every goroutine on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()
	email := id + "@example.com"
	user := &models.User{ID: id, Email: &email}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProject(t *testing.T, db *gorm.DB, ownerID, title string) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:            title,
		ShortDescription: "short " + title,
		UserID:           ownerID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func seedPost(t *testing.T, db *gorm.DB, ownerID, title string) *models.CommunityPost {
	t.Helper()
	post := &models.CommunityPost{Title: title, Content: "content of " + title, UserID: ownerID}
	require.NoError(t, db.Create(post).Error)
	return post
}

func reloadProject(t *testing.T, db *gorm.DB, id uuid.UUID) models.Project {
	t.Helper()
	var project models.Project
	require.NoError(t, db.First(&project, "id = ?", id).Error)
	return project
}

func reloadPost(t *testing.T, db *gorm.DB, id uuid.UUID) models.CommunityPost {
	t.Helper()
	var post models.CommunityPost
	require.NoError(t, db.First(&post, "id = ?", id).Error)
	return post
}

func countRows(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(where, args...).Count(&n).Error)
	return n
}

func at(minutes int) time.Time {
	return time.Date(2026, 1, 1, 12, minutes, 0, 0, time.UTC)
}
