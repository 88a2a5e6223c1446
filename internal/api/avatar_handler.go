package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/phrazzld/tasker-api/internal/avatar"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
	"github.com/phrazzld/tasker-api/internal/store"
)

// avatarField is the multipart form field carrying the image.
const avatarField = "avatar"

// maxMultipartBytes bounds the whole upload request, leaving room for the
// multipart framing around a file of avatar.MaxUploadBytes.
const maxMultipartBytes = avatar.MaxUploadBytes + 64<<10

// UploadAvatar handles POST /users/me/avatar.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)
	file, header, err := r.FormFile(avatarField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, fmt.Errorf("%w: file exceeds %d bytes", avatar.ErrInvalidUpload, avatar.MaxUploadBytes))
			return
		}
		HandleAPIError(w, r, fmt.Errorf("%w: please upload an image in the %q field", avatar.ErrInvalidUpload, avatarField))
		return
	}
	defer func() { _ = file.Close() }()

	if err := h.users.SetAvatar(r.Context(), user.ID, header.Filename, file); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.users.ClearAvatar(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetAvatar handles GET /users/{id}/avatar. It needs no authentication.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", store.ErrAvatarNotFound)
	if !ok {
		return
	}

	img, err := h.users.GetAvatar(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write avatar", "error", redact.Error(err))
	}
}
