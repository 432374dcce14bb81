package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type userHandler struct {
	responder    Responder
	logger       zerolog.Logger
	userRepo     *database.UserRepo
	projectRepo  *database.ProjectRepo
	bookmarkRepo *database.BookmarkRepo
}

func newUserHandler(userRepo *database.UserRepo, projectRepo *database.ProjectRepo, bookmarkRepo *database.BookmarkRepo) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		userRepo:     userRepo,
		projectRepo:  projectRepo,
		bookmarkRepo: bookmarkRepo,
	}
}

// getCurrentUser returns the signed-in user as upserted from the session.
func (h userHandler) getCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		user, err := h.userRepo.FindByID(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}

		h.responder.WriteJSON(w, CurrentUser{User: *user, Email: user.Email})
	}
}

func (h userHandler) getUserProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("userID"))
			return
		}

		projects, err := h.projectRepo.ListByOwner(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		h.responder.WriteJSON(w, projects)
	}
}

func (h userHandler) getMyBookmarks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		bookmarks, err := h.bookmarkRepo.ListForUser(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "bookmarks", err))
			return
		}

		h.responder.WriteJSON(w, bookmarks)
	}
}
