package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CounterStore is everything the reconciler needs from persistence. Counts
// must come from the source-of-truth tables, never from cached columns.
type CounterStore interface {
	ListIDs(ctx context.Context, target models.LikeTarget) ([]uuid.UUID, error)
	CountLikes(ctx context.Context, target models.LikeTarget, id uuid.UUID) (int, error)
	CountComments(ctx context.Context, target models.LikeTarget, id uuid.UUID) (int, error)
	CountViews(ctx context.Context, projectID uuid.UUID) (int, error)
	WriteProjectCounts(ctx context.Context, id uuid.UUID, counts models.ProjectCounts) error
	WritePostCounts(ctx context.Context, id uuid.UUID, counts models.PostCounts) error
}

// SyncResult reports one entity type's pass.
type SyncResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// SyncSummary reports a full pass over projects and community posts.
type SyncSummary struct {
	ProjectsUpdated int      `json:"projectsUpdated"`
	PostsUpdated    int      `json:"postsUpdated"`
	Errors          []string `json:"errors"`
}

// Reconciler recomputes cached counters from the interaction tables and
// overwrites them. It holds no state between calls, so it can run
// concurrently with live traffic and be re-run after partial failures.
type Reconciler struct {
	store         CounterStore
	logger        zerolog.Logger
	now           func() time.Time
	progressEvery int
}

func NewReconciler(store CounterStore) *Reconciler {
	return &Reconciler{
		store:         store,
		logger:        log.With().Str("component", "reconciler").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
		progressEvery: 100,
	}
}

// SyncAllCounts reconciles every project then every community post. Failing
// to enumerate either set aborts the run; per-entity failures are collected.
func (r *Reconciler) SyncAllCounts(ctx context.Context) (SyncSummary, error) {
	start := r.now()
	summary := SyncSummary{Errors: []string{}}

	projects, err := r.SyncProjectCounts(ctx)
	summary.ProjectsUpdated = projects.Updated
	summary.Errors = append(summary.Errors, projects.Errors...)
	if err != nil {
		return summary, err
	}

	posts, err := r.SyncCommunityPostCounts(ctx)
	summary.PostsUpdated = posts.Updated
	summary.Errors = append(summary.Errors, posts.Errors...)
	if err != nil {
		return summary, err
	}

	r.logger.Info().
		Int("projectsUpdated", summary.ProjectsUpdated).
		Int("postsUpdated", summary.PostsUpdated).
		Int("errors", len(summary.Errors)).
		Dur("took", r.now().Sub(start)).
		Msg("Counter sync complete")

	return summary, nil
}

func (r *Reconciler) SyncProjectCounts(ctx context.Context) (SyncResult, error) {
	return r.syncAll(ctx, models.TargetProject, func(id uuid.UUID) error {
		_, err := r.SyncSingleProjectCounts(ctx, id)
		return err
	})
}

func (r *Reconciler) SyncCommunityPostCounts(ctx context.Context) (SyncResult, error) {
	return r.syncAll(ctx, models.TargetPost, func(id uuid.UUID) error {
		_, err := r.SyncSinglePostCounts(ctx, id)
		return err
	})
}

func (r *Reconciler) syncAll(ctx context.Context, target models.LikeTarget, syncOne func(uuid.UUID) error) (SyncResult, error) {
	result := SyncResult{Errors: []string{}}

	ids, err := r.store.ListIDs(ctx, target)
	if err != nil {
		return result, fmt.Errorf("enumerate %ss: %w", target, err)
	}
	r.logger.Info().Str("target", target.String()).Int("total", len(ids)).Msg("Syncing counters")

	for i, id := range ids {
		// A cancelled run stops early and reports what it finished.
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		if err := syncOne(id); err != nil {
			r.logger.Error().Err(err).Str("target", target.String()).Str("id", id.String()).Msg("Failed to sync counters")
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", target, id, err))
			continue
		}
		result.Updated++

		if r.progressEvery > 0 && (i+1)%r.progressEvery == 0 {
			r.logger.Info().Str("target", target.String()).Msgf("Synced %d/%d", i+1, len(ids))
		}
	}

	return result, nil
}

// SyncSingleProjectCounts recounts likes, comments and views for one project
// concurrently and writes them back in a single update.
func (r *Reconciler) SyncSingleProjectCounts(ctx context.Context, id uuid.UUID) (models.ProjectCounts, error) {
	var counts models.ProjectCounts

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts.LikeCount, err = r.store.CountLikes(gctx, models.TargetProject, id)
		return err
	})
	g.Go(func() (err error) {
		counts.CommentCount, err = r.store.CountComments(gctx, models.TargetProject, id)
		return err
	})
	g.Go(func() (err error) {
		counts.ViewCount, err = r.store.CountViews(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ProjectCounts{}, err
	}

	counts.CountsLastUpdated = r.now()
	if err := r.store.WriteProjectCounts(ctx, id, counts); err != nil {
		return models.ProjectCounts{}, err
	}
	return counts, nil
}

// SyncSinglePostCounts is the community post counterpart of
// SyncSingleProjectCounts. Posts have no view counter.
func (r *Reconciler) SyncSinglePostCounts(ctx context.Context, id uuid.UUID) (models.PostCounts, error) {
	var counts models.PostCounts

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts.LikeCount, err = r.store.CountLikes(gctx, models.TargetPost, id)
		return err
	})
	g.Go(func() (err error) {
		counts.CommentCount, err = r.store.CountComments(gctx, models.TargetPost, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PostCounts{}, err
	}

	counts.CountsLastUpdated = r.now()
	if err := r.store.WritePostCounts(ctx, id, counts); err != nil {
		return models.PostCounts{}, err
	}
	return counts, nil
}
