package api

import (
	"net/http"
	"strings"

	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type communityPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	postRepo  *database.CommunityPostRepo
	likeRepo  *database.LikeRepo
}

func newCommunityPostHandler(postRepo *database.CommunityPostRepo, likeRepo *database.LikeRepo) communityPostHandler {
	logger := log.With().Str("handlerName", "communityPostHandler").Logger()

	return communityPostHandler{
		responder: NewResponder(logger),
		logger:    logger,
		postRepo:  postRepo,
		likeRepo:  likeRepo,
	}
}

func (h communityPostHandler) getAllPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit := pageParams(r)

		posts, total, err := h.postRepo.List(r.Context(), page, limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "community posts", err))
			return
		}

		h.responder.WriteJSON(w, CommunityPostCollection{Posts: posts, Total: total, Page: page, Limit: limit})
	}
}

func (h communityPostHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := uuidParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.postRepo.FindByID(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "community post", err))
			return
		}

		detail := CommunityPostDetail{CommunityPost: *post}
		if userID := ctxOptionalUserID(r.Context()); userID != "" {
			if detail.UserInteractions.IsLiked, err = h.likeRepo.HasLiked(r.Context(), models.TargetPost, postID, userID); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "like", err))
				return
			}
		}

		h.responder.WriteJSON(w, detail)
	}
}

func (req CommunityPostRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	if strings.TrimSpace(req.Content) == "" {
		return errs.NewMissingRequiredFieldError("content")
	}
	return nil
}

func (h communityPostHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var req CommunityPostRequest
		if err := decodeJSON(w, r, &req, "community post"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := models.CommunityPost{
			Title:   strings.TrimSpace(req.Title),
			Content: strings.TrimSpace(req.Content),
			UserID:  userID,
		}
		if err := h.postRepo.Add(r.Context(), &post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "community post", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, post)
	}
}

func (h communityPostHandler) ownedPost(r *http.Request) (*models.CommunityPost, error) {
	userID, err := ctxGetUserID(r.Context())
	if err != nil {
		return nil, errs.Unauthorized
	}

	postID, err := uuidParam(r, "postID")
	if err != nil {
		return nil, err
	}

	post, err := h.postRepo.FindByID(r.Context(), postID)
	if err != nil {
		return nil, wrapDatabaseError("find", "community post", err)
	}
	if post.UserID != userID {
		return nil, errs.NewForbiddenError("only the author can change this post")
	}
	return post, nil
}

func (h communityPostHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.ownedPost(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req CommunityPostRequest
		if err := decodeJSON(w, r, &req, "community post"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post.Title = strings.TrimSpace(req.Title)
		post.Content = strings.TrimSpace(req.Content)

		if err := h.postRepo.Update(r.Context(), post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "community post", err))
			return
		}

		h.responder.WriteJSON(w, post)
	}
}

func (h communityPostHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.ownedPost(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.postRepo.Delete(r.Context(), post.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "community post", err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
