package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/rpupo63/sideshub-backend/errs"
	"github.com/rpupo63/sideshub-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type uploadPresigner interface {
	PresignUpload(ctx context.Context, userID, contentType string) (services.PresignedUpload, error)
}

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	storage   uploadPresigner
}

func newUploadHandler(storage uploadPresigner) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		storage:   storage,
	}
}

// createUpload hands the client a presigned PUT URL for a thumbnail.
func (h uploadHandler) createUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if h.storage == nil {
			h.responder.WriteError(w, errs.NewUnavailableError("uploads are not configured"))
			return
		}

		var req UploadRequest
		if err := decodeJSON(w, r, &req, "upload"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.ContentType == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("contentType"))
			return
		}

		upload, err := h.storage.PresignUpload(r.Context(), userID, req.ContentType)
		if errors.Is(err, services.ErrUnsupportedMediaType) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("contentType", "must be png, jpeg, gif or webp"))
			return
		}
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to presign upload", err))
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, upload)
	}
}
