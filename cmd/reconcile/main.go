// Command reconcile recomputes cached like, comment and view counters from
// the interaction tables. It runs once by default; with -interval it repeats
// until interrupted.
//
//	go run ./cmd/reconcile                      # everything, once
//	go run ./cmd/reconcile -scope posts         # community posts only
//	go run ./cmd/reconcile -project <uuid>      # a single project
//	go run ./cmd/reconcile -interval 15m        # every 15 minutes
//
// Exit status is 1 on a fatal error and 2 when some entities failed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/sideshub-backend/config"
	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/logging"
	"github.com/rpupo63/sideshub-backend/services"
)

const (
	exitFatal   = 1
	exitPartial = 2
)

type job struct {
	reconciler *services.Reconciler
	scope      string
	projectID  uuid.UUID
	postID     uuid.UUID
	out        io.Writer
}

// run performs one pass and prints its result as JSON. partial is true when
// the pass finished but some entities could not be synced.
func (j job) run(ctx context.Context) (partial bool, err error) {
	var result any

	switch {
	case j.projectID != uuid.Nil:
		result, err = j.reconciler.SyncSingleProjectCounts(ctx, j.projectID)
	case j.postID != uuid.Nil:
		result, err = j.reconciler.SyncSinglePostCounts(ctx, j.postID)
	case j.scope == "projects":
		var r services.SyncResult
		r, err = j.reconciler.SyncProjectCounts(ctx)
		result, partial = r, len(r.Errors) > 0
	case j.scope == "posts":
		var r services.SyncResult
		r, err = j.reconciler.SyncCommunityPostCounts(ctx)
		result, partial = r, len(r.Errors) > 0
	case j.scope == "all":
		var s services.SyncSummary
		s, err = j.reconciler.SyncAllCounts(ctx)
		result, partial = s, len(s.Errors) > 0
	default:
		return false, fmt.Errorf("unknown scope %q (want all, projects or posts)", j.scope)
	}
	if err != nil {
		return false, err
	}

	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return partial, fmt.Errorf("write summary: %w", err)
	}
	return partial, nil
}

// parseTargets reads the single-entity flags. At most one may be set.
func parseTargets(project, post string) (projectID, postID uuid.UUID, err error) {
	if project != "" && post != "" {
		return uuid.Nil, uuid.Nil, errors.New("-project and -post are mutually exclusive")
	}
	if projectID, err = parseID(project, "project"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if postID, err = parseID(post, "post"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return projectID, postID, nil
}

func parseID(raw, name string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("-%s: %w", name, err)
	}
	return id, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	c, cfgErr := config.Load(context.Background())
	logging.Setup(config.GetString(c, "APP_ENV", "production"))
	if cfgErr != nil {
		log.Error().Err(cfgErr).Msg("Error loading configuration")
		os.Exit(exitFatal)
	}

	scope := flag.String("scope", "all", "what to reconcile: all, projects or posts")
	project := flag.String("project", "", "reconcile a single project by id")
	post := flag.String("post", "", "reconcile a single community post by id")
	interval := flag.Duration("interval", config.GetDuration(c, "RECONCILE_INTERVAL", 0), "repeat every interval until interrupted (0 runs once)")
	flag.Parse()

	projectID, postID, err := parseTargets(*project, *post)
	if err != nil {
		log.Error().Err(err).Msg("Invalid flags")
		os.Exit(exitFatal)
	}

	os.Exit(reconcile(c, job{scope: *scope, projectID: projectID, postID: postID, out: os.Stdout}, *interval))
}

func reconcile(c map[string]string, j job, interval time.Duration) int {
	db, err := database.Open(c)
	if err != nil {
		log.Error().Err(err).Msg("Error connecting to database")
		return exitFatal
	}
	j.reconciler = services.NewReconciler(database.New(db).CounterRepo())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if interval <= 0 {
		return exitCode(j.run(ctx))
	}

	log.Info().Dur("interval", interval).Msg("Reconciler started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run immediately on start, then on schedule
	code := exitCode(j.run(ctx))
	for {
		select {
		case <-ticker.C:
			code = exitCode(j.run(ctx))
		case <-ctx.Done():
			log.Info().Msg("Reconciler stopped")
			return code
		}
	}
}

func exitCode(partial bool, err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 0
	case errs.IsNotFound(err):
		log.Error().Err(err).Msg("Nothing to reconcile")
		return exitFatal
	case err != nil:
		log.Error().Err(err).Msg("Reconciliation failed")
		return exitFatal
	case partial:
		log.Warn().Msg("Reconciliation finished with errors")
		return exitPartial
	default:
		return 0
	}
}
