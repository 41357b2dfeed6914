package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Garicore01/PlayBeat-Backend/core/access"
	"github.com/Garicore01/PlayBeat-Backend/errs"
	"github.com/Garicore01/PlayBeat-Backend/logger"
	"github.com/Garicore01/PlayBeat-Backend/model"
	"github.com/Garicore01/PlayBeat-Backend/storage"

	"github.com/gorilla/mux"
)

// maxUploadSize bounds multipart parsing memory; larger files spill to disk.
const maxUploadSize = 512 << 20

// audioInput is the validated multipart payload of an audio create request.
type audioInput struct {
	Title       string
	Duration    int
	ReleaseDate time.Time
	IsAlbum     bool
	IsPrivate   bool
	Image       string
	OwnerIDs    []int64
	TagIDs      []int64
	TagType     model.TagType
}

// parseIDList parses a comma separated id list ("1,2,3").
func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseAudioForm validates the create-audio form fields.
func parseAudioForm(r *http.Request) (*audioInput, error) {
	in := &audioInput{}

	in.Title = r.FormValue("title")
	durationStr := r.FormValue("duration")
	releaseStr := r.FormValue("releaseDate")
	isAlbumStr := r.FormValue("isAlbum")
	isPrivateStr := r.FormValue("isPrivate")
	if in.Title == "" || durationStr == "" || releaseStr == "" || isAlbumStr == "" || isPrivateStr == "" {
		return nil, errs.BadRequest("Missing required fields")
	}

	duration, err := strconv.Atoi(durationStr)
	if err != nil || duration < 0 {
		return nil, errs.BadRequest("Invalid duration")
	}
	in.Duration = duration

	release, err := time.Parse("2006-01-02", releaseStr)
	if err != nil {
		if release, err = time.Parse(time.RFC3339, releaseStr); err != nil {
			return nil, errs.BadRequest("Invalid release date")
		}
	}
	in.ReleaseDate = release

	if in.IsAlbum, err = strconv.ParseBool(isAlbumStr); err != nil {
		return nil, errs.BadRequest("Invalid isAlbum flag")
	}
	if in.IsPrivate, err = strconv.ParseBool(isPrivateStr); err != nil {
		return nil, errs.BadRequest("Invalid isPrivate flag")
	}

	in.Image = r.FormValue("image")

	if raw := r.FormValue("ownerIds"); raw != "" {
		if in.OwnerIDs, err = parseIDList(raw); err != nil {
			return nil, errs.BadRequest("Invalid owner id list")
		}
	}

	tagsRaw := r.FormValue("tags")
	tagTypeRaw := r.FormValue("tagType")
	if tagsRaw == "" && tagTypeRaw != "" {
		return nil, errs.BadRequest("Tag type given without tags")
	}
	if tagsRaw != "" {
		in.TagType = model.TagType(tagTypeRaw)
		if !in.TagType.Valid() {
			return nil, errs.BadRequest("Invalid tag type")
		}
		if in.TagIDs, err = parseIDList(tagsRaw); err != nil {
			return nil, errs.BadRequest("Invalid tag id list")
		}
	}

	return in, nil
}

// CreateAudioHandler handles audio uploads. The file lands in the spool
// first; the object-storage promotion happens only after the store commit,
// with a reconciliation entry recorded when the promotion fails.
func (h *APIHandler) CreateAudioHandler(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, errs.BadRequest("Invalid multipart body"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errs.BadRequest("No file uploaded"))
		return
	}
	defer file.Close()

	in, err := parseAudioForm(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Resolve the owner list before persisting anything: a bad owner id must
	// not leave an ownerless audio row behind.
	if err := h.sync.VerifyUsers(r.Context(), in.OwnerIDs); err != nil {
		writeError(w, err)
		return
	}

	spoolPath, err := h.spool.Save(file, header.Filename)
	if err != nil {
		writeError(w, errs.Internal("Failed to store uploaded file", err))
		return
	}

	objectKey := storage.NewAudioKey(header.Filename)
	audio := &model.Audio{
		Title:       in.Title,
		StoragePath: objectKey,
		Duration:    in.Duration,
		ReleaseDate: in.ReleaseDate,
		IsAlbum:     in.IsAlbum,
		IsPrivate:   in.IsPrivate,
		ImagePath:   in.Image,
	}

	audioID, err := h.audioRepo.CreateAudio(r.Context(), audio)
	if err != nil {
		h.spool.Discard(spoolPath)
		writeError(w, errs.Internal("Failed to create audio", err))
		return
	}

	// The creator is always an owner, even when an explicit owner list is
	// supplied (union, not replacement).
	ownerIDs := append([]int64{requester.UserID}, in.OwnerIDs...)
	if err := h.sync.AddOwners(r.Context(), audioID, ownerIDs); err != nil {
		h.spool.Discard(spoolPath)
		writeError(w, err)
		return
	}

	for _, tagID := range in.TagIDs {
		if err := h.sync.LinkTag(r.Context(), audioID, tagID, in.TagType); err != nil {
			h.spool.Discard(spoolPath)
			writeError(w, err)
			return
		}
	}

	contentType := header.Header.Get("Content-Type")
	if err := h.store.PromoteFile(r.Context(), spoolPath, objectKey, contentType); err != nil {
		logger.Error("Failed to promote uploaded file",
			logger.Int64("audioId", audioID),
			logger.String("objectKey", objectKey),
			logger.ErrorField(err))
		if ferr := h.flagReconciliation(r.Context(), "promote_object", objectKey, "audio", audioID, spoolPath); ferr != nil {
			// The row committed but the file is stranded in the spool with no
			// reconciliation entry to replay it.
			writeError(w, errs.Wrap(errs.KindPartialLink, "Audio stored but file promotion failed", err))
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Audio added successfully",
		"id":      audioID,
	})
}

// GetAudioHandler returns audio metadata plus its artist list when the
// requester is read-authorized.
func (h *APIHandler) GetAudioHandler(w http.ResponseWriter, r *http.Request) {
	_, audio, err := h.loadAudioForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	full, err := h.audioRepo.GetAudioWithTags(r.Context(), audio.ID)
	if err != nil || full == nil {
		writeError(w, errs.Internal("Failed to load audio", err))
		return
	}

	writeJSON(w, http.StatusOK, full)
}

// UpdateAudioHandler applies a partial update of the provided fields and,
// when a new file is attached, replaces the stored object.
func (h *APIHandler) UpdateAudioHandler(w http.ResponseWriter, r *http.Request) {
	_, audio, err := h.loadAudioForAccess(r, access.Write)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, errs.BadRequest("Invalid multipart body"))
		return
	}

	patch := &model.AudioPatch{}
	if v := r.FormValue("title"); v != "" {
		patch.Title = &v
	}
	if v := r.FormValue("duration"); v != "" {
		duration, err := strconv.Atoi(v)
		if err != nil || duration < 0 {
			writeError(w, errs.BadRequest("Invalid duration"))
			return
		}
		patch.Duration = &duration
	}
	if v := r.FormValue("releaseDate"); v != "" {
		release, err := time.Parse("2006-01-02", v)
		if err != nil {
			if release, err = time.Parse(time.RFC3339, v); err != nil {
				writeError(w, errs.BadRequest("Invalid release date"))
				return
			}
		}
		patch.ReleaseDate = &release
	}
	if v := r.FormValue("isAlbum"); v != "" {
		isAlbum, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, errs.BadRequest("Invalid isAlbum flag"))
			return
		}
		patch.IsAlbum = &isAlbum
	}
	if v := r.FormValue("isPrivate"); v != "" {
		isPrivate, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, errs.BadRequest("Invalid isPrivate flag"))
			return
		}
		patch.IsPrivate = &isPrivate
	}
	if v := r.FormValue("image"); v != "" {
		patch.ImagePath = &v
	}

	tagsRaw := r.FormValue("tags")
	tagTypeRaw := r.FormValue("tagType")
	if tagsRaw == "" && tagTypeRaw != "" {
		writeError(w, errs.BadRequest("Tag type given without tags"))
		return
	}
	var tagIDs []int64
	tagType := model.TagType(tagTypeRaw)
	if tagsRaw != "" {
		if !tagType.Valid() {
			writeError(w, errs.BadRequest("Invalid tag type"))
			return
		}
		if tagIDs, err = parseIDList(tagsRaw); err != nil {
			writeError(w, errs.BadRequest("Invalid tag id list"))
			return
		}
	}

	// Tag links run before the patch commits: a rejected link must not leave
	// the row pointing at a replacement object that was never promoted.
	for _, tagID := range tagIDs {
		if err := h.sync.LinkTag(r.Context(), audio.ID, tagID, tagType); err != nil {
			writeError(w, err)
			return
		}
	}

	// Optional file replacement: spool, commit the new key, then swap the
	// objects in storage.
	var spoolPath, newKey, contentType string
	if file, header, ferr := r.FormFile("file"); ferr == nil {
		defer file.Close()
		if spoolPath, err = h.spool.Save(file, header.Filename); err != nil {
			writeError(w, errs.Internal("Failed to store uploaded file", err))
			return
		}
		newKey = storage.NewAudioKey(header.Filename)
		contentType = header.Header.Get("Content-Type")
		patch.StoragePath = &newKey
	}

	if err := h.audioRepo.UpdateAudio(r.Context(), audio.ID, patch); err != nil {
		if spoolPath != "" {
			h.spool.Discard(spoolPath)
		}
		writeError(w, errs.Internal("Failed to update audio", err))
		return
	}

	if spoolPath != "" {
		if err := h.store.PromoteFile(r.Context(), spoolPath, newKey, contentType); err != nil {
			logger.Error("Failed to promote replacement file",
				logger.Int64("audioId", audio.ID),
				logger.ErrorField(err))
			h.flagReconciliation(r.Context(), "promote_object", newKey, "audio", audio.ID, spoolPath)
		} else if audio.StoragePath != "" {
			if err := h.store.RemoveObject(r.Context(), audio.StoragePath); err != nil {
				logger.Warn("Failed to remove replaced object",
					logger.String("objectKey", audio.StoragePath),
					logger.ErrorField(err))
				h.flagReconciliation(r.Context(), "delete_object", audio.StoragePath, "audio", audio.ID, "replaced by "+newKey)
			}
		}
	}

	writeMessage(w, "Audio updated successfully")
}

// DeleteAudioHandler deletes the audio row first and its backing object
// second, flagging a reconciliation entry when the object removal fails.
func (h *APIHandler) DeleteAudioHandler(w http.ResponseWriter, r *http.Request) {
	_, audio, err := h.loadAudioForAccess(r, access.Write)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.audioRepo.DeleteAudio(r.Context(), audio.ID); err != nil {
		writeError(w, errs.Internal("Failed to delete audio", err))
		return
	}

	if audio.StoragePath != "" {
		if err := h.store.RemoveObject(r.Context(), audio.StoragePath); err != nil {
			logger.Warn("Failed to remove audio object",
				logger.String("objectKey", audio.StoragePath),
				logger.ErrorField(err))
			h.flagReconciliation(r.Context(), "delete_object", audio.StoragePath, "audio", audio.ID, "audio deleted")
		}
	}

	writeMessage(w, "Audio deleted successfully")
}

// loadAudioForAccess resolves the {id} route variable, loads the audio with
// its artist set and evaluates access at the required level.
func (h *APIHandler) loadAudioForAccess(r *http.Request, level access.Level) (access.Requester, *model.Audio, error) {
	requester, ok := RequesterFromContext(r.Context())
	if !ok {
		return access.Requester{}, nil, errs.New(errs.KindUnauthorized, "Unauthorized")
	}

	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return requester, nil, errs.BadRequest("Invalid audio id")
	}

	audio, err := h.audioRepo.GetAudioByID(r.Context(), id)
	if err != nil {
		return requester, nil, errs.Internal("Failed to load audio", err)
	}
	if audio == nil {
		return requester, nil, errs.NotFound("Audio not found")
	}

	decision, err := access.CanAccess(requester, audio, level)
	if err != nil {
		logger.Error("Audio owner set is inconsistent", logger.Int64("audioId", id))
		return requester, nil, err
	}
	if decision != access.Allow {
		return requester, nil, errs.Forbidden("Unauthorized")
	}
	return requester, audio, nil
}

// flagReconciliation records a failed object-storage side effect for a later
// replay pass. The returned error reports a failure to record the entry
// itself, which leaves the inconsistency with no replay path.
func (h *APIHandler) flagReconciliation(ctx context.Context, action, objectKey, resourceType string, resourceID int64, reason string) error {
	rec := &model.Reconciliation{
		Action:       action,
		ObjectKey:    objectKey,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Reason:       reason,
	}
	if err := h.reconRepo.Add(ctx, rec); err != nil {
		logger.Error("Failed to record reconciliation entry",
			logger.String("objectKey", objectKey),
			logger.ErrorField(err))
		return err
	}
	return nil
}
