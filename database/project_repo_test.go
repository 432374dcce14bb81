package database

import (
	"context"
	"testing"

	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestProjectListFiltersAndSorts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepo(db)
	owner := seedUser(t, db, "owner")

	for _, p := range []models.Project{
		{Title: "Rust Raytracer", ShortDescription: "pixels", Tags: datatypes.JSONSlice[string]{"graphics", "rust"}, LikeCount: 3, ViewCount: 50, CreatedAt: at(1)},
		{Title: "Go Queue", ShortDescription: "a job queue", Tags: datatypes.JSONSlice[string]{"go"}, IsFeatured: true, LikeCount: 9, ViewCount: 5, CreatedAt: at(2)},
		{Title: "Notes App", ShortDescription: "markdown notes in go", Tags: datatypes.JSONSlice[string]{"web", "go"}, LikeCount: 1, ViewCount: 7, CreatedAt: at(3)},
	} {
		p.UserID = owner.ID
		require.NoError(t, db.Create(&p).Error)
	}

	titles := func(projects []models.Project) []string {
		out := make([]string, 0, len(projects))
		for _, p := range projects {
			out = append(out, p.Title)
		}
		return out
	}

	all, total, err := repo.List(ctx, ProjectFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"Notes App", "Go Queue", "Rust Raytracer"}, titles(all))

	popular, _, err := repo.List(ctx, ProjectFilter{Sort: SortPopular})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Queue", "Rust Raytracer", "Notes App"}, titles(popular))

	viewed, _, err := repo.List(ctx, ProjectFilter{Sort: SortViews})
	require.NoError(t, err)
	assert.Equal(t, "Rust Raytracer", viewed[0].Title)

	tagged, total, err := repo.List(ctx, ProjectFilter{Tag: "go"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"Notes App", "Go Queue"}, titles(tagged))

	searched, _, err := repo.List(ctx, ProjectFilter{Query: "GO"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go Queue", "Notes App"}, titles(searched))

	featured := true
	onlyFeatured, _, err := repo.List(ctx, ProjectFilter{Featured: &featured})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Queue"}, titles(onlyFeatured))

	page2, total, err := repo.List(ctx, ProjectFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"Rust Raytracer"}, titles(page2))
}

func TestProjectSearchTreatsWildcardsLiterally(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepo(db)
	owner := seedUser(t, db, "owner")

	seedProject(t, db, owner.ID, "100% Uptime")
	seedProject(t, db, owner.ID, "snake_case linter")
	seedProject(t, db, owner.ID, "Plain Old Project")

	for q, want := range map[string]int64{"%": 1, "_": 1, "0% up": 1, `\`: 0, "old": 1} {
		_, total, err := repo.List(ctx, ProjectFilter{Query: q})
		require.NoError(t, err)
		assert.Equal(t, want, total, q)
	}
}

func TestProjectAddAndUpdateNeverTakeCounters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewProjectRepo(db)
	owner := seedUser(t, db, "owner")

	project := &models.Project{Title: "Fresh", ShortDescription: "new", UserID: owner.ID, LikeCount: 99}
	require.NoError(t, repo.Add(ctx, project))
	assert.Equal(t, 0, reloadProject(t, db, project.ID).LikeCount)

	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).UpdateColumn("like_count", 4).Error)

	project.Title = "Renamed"
	project.Tags = datatypes.JSONSlice[string]{"cli"}
	require.NoError(t, repo.Update(ctx, project))

	stored, err := repo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, []string{"cli"}, []string(stored.Tags))
	assert.Equal(t, 4, stored.LikeCount)
}

func TestDeleteProjectCascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	d := New(db)

	owner := seedUser(t, db, "owner")
	fan := seedUser(t, db, "fan")
	project := seedProject(t, db, owner.ID, "Doomed")

	_, err := d.LikeRepo().RecordLike(ctx, models.TargetProject, project.ID, fan.ID)
	require.NoError(t, err)
	_, err = d.BookmarkRepo().AddBookmark(ctx, project.ID, fan.ID)
	require.NoError(t, err)
	_, err = d.CommentRepo().RecordComment(ctx, &models.Comment{Content: "bye", ProjectID: &project.ID, UserID: fan.ID})
	require.NoError(t, err)
	require.NoError(t, d.ViewRepo().RecordView(ctx, project.ID, &fan.ID, nil))

	require.NoError(t, d.ProjectRepo().Delete(ctx, project.ID))

	assert.EqualValues(t, 0, countRows(t, db, &models.ProjectLike{}, "project_id = ?", project.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.ProjectBookmark{}, "project_id = ?", project.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.Comment{}, "project_id = ?", project.ID))
	assert.EqualValues(t, 0, countRows(t, db, &models.ProjectView{}, "project_id = ?", project.ID))

	_, err = d.ProjectRepo().FindByID(ctx, project.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, d.ProjectRepo().Delete(ctx, project.ID), errs.ErrNotFound)
}

func TestCommunityPostsPinnedFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "owner")

	for _, p := range []models.CommunityPost{
		{Title: "old pinned", Content: "x", IsPinned: true, CreatedAt: at(1)},
		{Title: "newest", Content: "x", CreatedAt: at(3)},
		{Title: "middle", Content: "x", CreatedAt: at(2)},
	} {
		p.UserID = owner.ID
		require.NoError(t, db.Create(&p).Error)
	}

	posts, total, err := NewCommunityPostRepo(db).List(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, posts, 3)
	assert.Equal(t, "old pinned", posts[0].Title)
	assert.Equal(t, "newest", posts[1].Title)
	assert.Equal(t, "middle", posts[2].Title)
}

func TestUserUpsertRefreshesProfile(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)

	first := "Ada"
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "sub-1", FirstName: &first}))

	renamed := "Augusta"
	require.NoError(t, repo.Upsert(ctx, &models.User{ID: "sub-1", FirstName: &renamed}))

	user, err := repo.FindByID(ctx, "sub-1")
	require.NoError(t, err)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Augusta", *user.FirstName)
	assert.EqualValues(t, 1, countRows(t, db, &models.User{}, "id = ?", "sub-1"))

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
