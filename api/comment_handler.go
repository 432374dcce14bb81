package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxCommentLength = 5000

type commentHandler struct {
	responder   Responder
	logger      zerolog.Logger
	commentRepo *database.CommentRepo
}

func newCommentHandler(commentRepo *database.CommentRepo) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		commentRepo: commentRepo,
	}
}

func (h commentHandler) listComments(target models.LikeTarget, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID, err := uuidParam(r, param)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comments, err := h.commentRepo.ListForTarget(r.Context(), target, targetID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "comments", err))
			return
		}

		h.responder.WriteJSON(w, comments)
	}
}

// createComment attaches a comment to the project or post in the path. The
// parent comes from the route only, so a comment can never name two parents.
func (h commentHandler) createComment(target models.LikeTarget, param string) http.HandlerFunc {
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

		var req CommentRequest
		if err := decodeJSON(w, r, &req, "comment"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		content := strings.TrimSpace(req.Content)
		if content == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("content"))
			return
		}
		if utf8.RuneCountInString(content) > maxCommentLength {
			h.responder.WriteError(w, errs.NewInvalidFieldError("content", "is too long"))
			return
		}

		comment := &models.Comment{Content: content, UserID: userID}
		switch target {
		case models.TargetProject:
			comment.ProjectID = &targetID
		case models.TargetPost:
			comment.PostID = &targetID
		}

		created, err := h.commentRepo.RecordComment(r.Context(), comment)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "comment", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, created)
	}
}

// deleteComment removes the caller's own comment. Missing and foreign
// comments both answer 404.
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		commentID, err := uuidParam(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		removed, err := h.commentRepo.RemoveComment(r.Context(), commentID, userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "comment", err))
			return
		}
		if !removed {
			h.responder.WriteError(w, errs.NewNotFoundError("comment"))
			return
		}

		h.responder.WriteJSON(w, InteractionResponse{Success: true})
	}
}
