package server

import (
	"net/http"
	"path"

	"github.com/Garicore01/PlayBeat-Backend/core/access"
	"github.com/Garicore01/PlayBeat-Backend/errs"
	"github.com/Garicore01/PlayBeat-Backend/logger"
)

// StreamAudioHandler delivers the backing audio file with byte-range
// support when the requester is read-authorized. The object reader seeks,
// so range requests are served without buffering the whole file.
func (h *APIHandler) StreamAudioHandler(w http.ResponseWriter, r *http.Request) {
	_, audio, err := h.loadAudioForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	if audio.StoragePath == "" {
		writeError(w, errs.NotFound("File not found"))
		return
	}

	info, err := h.store.StatObject(r.Context(), audio.StoragePath)
	if err != nil {
		logger.Warn("Backing object missing",
			logger.Int64("audioId", audio.ID),
			logger.String("objectKey", audio.StoragePath),
			logger.ErrorField(err))
		writeError(w, errs.NotFound("File not found"))
		return
	}

	object, err := h.store.OpenObject(r.Context(), audio.StoragePath)
	if err != nil {
		writeError(w, errs.Internal("Failed to open audio object", err))
		return
	}
	defer object.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	http.ServeContent(w, r, path.Base(audio.StoragePath), info.LastModified, object)
}
