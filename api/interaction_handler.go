package api

import (
	"net"
	"net/http"

	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// interactionHandler serves like, bookmark and view endpoints. Duplicate or
// absent interactions are answered with success=false, never an error.
type interactionHandler struct {
	responder    Responder
	logger       zerolog.Logger
	likeRepo     *database.LikeRepo
	bookmarkRepo *database.BookmarkRepo
	viewRepo     *database.ViewRepo
}

func newInteractionHandler(likeRepo *database.LikeRepo, bookmarkRepo *database.BookmarkRepo, viewRepo *database.ViewRepo) interactionHandler {
	logger := log.With().Str("handlerName", "interactionHandler").Logger()

	return interactionHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		likeRepo:     likeRepo,
		bookmarkRepo: bookmarkRepo,
		viewRepo:     viewRepo,
	}
}

// like returns the handler for liking (add) or unliking a project or post.
// The response carries the cached likeCount after the change.
func (h interactionHandler) like(target models.LikeTarget, param string, add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		targetID, err := uuidParam(r, param)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var changed bool
		if add {
			changed, err = h.likeRepo.RecordLike(r.Context(), target, targetID, userID)
		} else {
			changed, err = h.likeRepo.RemoveLike(r.Context(), target, targetID, userID)
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", target.String()+" like", err))
			return
		}

		likeCount, err := h.likeRepo.CachedLikeCount(r.Context(), target, targetID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", target.String(), err))
			return
		}

		h.responder.WriteJSON(w, InteractionResponse{Success: changed, LikeCount: &likeCount})
	}
}

func (h interactionHandler) bookmark(add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var changed bool
		if add {
			changed, err = h.bookmarkRepo.AddBookmark(r.Context(), projectID, userID)
		} else {
			changed, err = h.bookmarkRepo.RemoveBookmark(r.Context(), projectID, userID)
		}
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "bookmark", err))
			return
		}

		h.responder.WriteJSON(w, InteractionResponse{Success: changed})
	}
}

// recordView logs a view for signed-in and anonymous visitors alike.
func (h interactionHandler) recordView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var userID, ip *string
		if id := ctxOptionalUserID(r.Context()); id != "" {
			userID = &id
		}
		if addr := clientIP(r); net.ParseIP(addr) != nil {
			ip = &addr
		}

		if err := h.viewRepo.RecordView(r.Context(), projectID, userID, ip); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("record", "project view", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, InteractionResponse{Success: true})
	}
}
