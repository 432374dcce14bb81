package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type projectHandler struct {
	responder    Responder
	logger       zerolog.Logger
	projectRepo  *database.ProjectRepo
	likeRepo     *database.LikeRepo
	bookmarkRepo *database.BookmarkRepo
}

func newProjectHandler(projectRepo *database.ProjectRepo, likeRepo *database.LikeRepo, bookmarkRepo *database.BookmarkRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		projectRepo:  projectRepo,
		likeRepo:     likeRepo,
		bookmarkRepo: bookmarkRepo,
	}
}

// pageParams reads page and limit query parameters; bad values fall back to
// the repository defaults.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = database.DefaultPageSize
	}
	if limit > database.MaxPageSize {
		limit = database.MaxPageSize
	}
	return page, limit
}

// getAllProjects lists projects with their cached counters.
// Query: q, tag, featured, sort (recent|popular|views), page, limit.
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := database.ProjectFilter{
			Query: query.Get("q"),
			Tag:   query.Get("tag"),
			Sort:  query.Get("sort"),
		}

		switch filter.Sort {
		case "", database.SortRecent, database.SortPopular, database.SortViews:
		default:
			h.responder.WriteError(w, errs.NewInvalidFieldError("sort", "must be one of recent, popular, views"))
			return
		}

		if raw := query.Get("featured"); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFieldError("featured", "must be a boolean"))
				return
			}
			filter.Featured = &featured
		}
		filter.Page, filter.Limit = pageParams(r)

		projects, total, err := h.projectRepo.List(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, ProjectCollection{
			Projects: projects,
			Total:    total,
			Page:     filter.Page,
			Limit:    filter.Limit,
		})
	}
}

// getProject returns one project. Signed-in viewers also get their like and
// bookmark state.
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}

		detail := ProjectDetail{Project: *project}
		if userID := ctxOptionalUserID(r.Context()); userID != "" {
			if detail.UserInteractions.IsLiked, err = h.likeRepo.HasLiked(r.Context(), models.TargetProject, projectID, userID); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "like", err))
				return
			}
			if detail.UserInteractions.IsBookmarked, err = h.bookmarkRepo.IsBookmarked(r.Context(), projectID, userID); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "bookmark", err))
				return
			}
		}

		h.responder.WriteJSON(w, detail)
	}
}

func cleanList(items []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (req ProjectRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	if strings.TrimSpace(req.ShortDescription) == "" {
		return errs.NewMissingRequiredFieldError("shortDescription")
	}
	return nil
}

func (req ProjectRequest) apply(project *models.Project) {
	project.Title = strings.TrimSpace(req.Title)
	project.ShortDescription = strings.TrimSpace(req.ShortDescription)
	project.FullDescription = req.FullDescription
	project.ThumbnailURL = req.ThumbnailURL
	project.DemoURL = req.DemoURL
	project.SourceURL = req.SourceURL
	project.Tags = cleanList(req.Tags)
	project.TechStack = cleanList(req.TechStack)
}

func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req ProjectRequest
		if err := decodeJSON(w, r, &req, "project"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := models.Project{UserID: userID}
		req.apply(&project)

		if err := h.projectRepo.Add(r.Context(), &project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}

		h.logger.Info().Str("projectID", project.ID.String()).Str("userID", userID).Msg("Project created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, project)
	}
}

// ownedProject loads the project and checks the caller owns it.
func (h projectHandler) ownedProject(r *http.Request) (*models.Project, error) {
	userID, err := ctxGetUserID(r.Context())
	if err != nil {
		return nil, errs.Unauthorized
	}

	projectID, err := uuidParam(r, "projectID")
	if err != nil {
		return nil, err
	}

	project, err := h.projectRepo.FindByID(r.Context(), projectID)
	if err != nil {
		return nil, wrapDatabaseError("find", "project", err)
	}
	if project.UserID != userID {
		return nil, errs.NewForbiddenError("only the owner can change this project")
	}
	return project, nil
}

func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.ownedProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req ProjectRequest
		if err := decodeJSON(w, r, &req, "project"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.apply(project)

		if err := h.projectRepo.Update(r.Context(), project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.ownedProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(r.Context(), project.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}

		h.logger.Info().Str("projectID", project.ID.String()).Msg("Project deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}
