package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Garicore01/PlayBeat-Backend/cache"
	"github.com/Garicore01/PlayBeat-Backend/core/access"
	"github.com/Garicore01/PlayBeat-Backend/core/notify"
	"github.com/Garicore01/PlayBeat-Backend/errs"
	"github.com/Garicore01/PlayBeat-Backend/logger"
	"github.com/Garicore01/PlayBeat-Backend/model"

	"github.com/gorilla/mux"
)

// CreateListRequest represents the create-list request body.
type CreateListRequest struct {
	Name        string  `json:"name"`
	IsAlbum     *bool   `json:"isAlbum"`
	IsPrivate   *bool   `json:"isPrivate"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Type        string  `json:"type"`
	OwnerIDs    []int64 `json:"ownerIds"`
	AudioIDs    []int64 `json:"audios"`
}

// CreateListHandler creates a list. The reserved My* types are seeded at
// registration and rejected here.
func (h *APIHandler) CreateListHandler(w http.ResponseWriter, r *http.Request) {
	requester, ok := RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.BadRequest("Invalid request body"))
		return
	}

	if req.Name == "" || req.IsAlbum == nil || req.IsPrivate == nil {
		writeError(w, errs.BadRequest("Missing required fields"))
		return
	}

	listType := model.ListTypeNormal
	if req.Type != "" {
		listType = model.ListType(req.Type)
		if !listType.Valid() {
			writeError(w, errs.BadRequest("Invalid list type"))
			return
		}
		if listType.Reserved() {
			writeError(w, errs.BadRequest("Reserved list types cannot be created"))
			return
		}
	}

	// Resolve the owner list before persisting anything: a bad owner id must
	// not leave an ownerless list row behind.
	if err := h.sync.VerifyUsers(r.Context(), req.OwnerIDs); err != nil {
		writeError(w, err)
		return
	}

	list := &model.List{
		Name:        req.Name,
		IsAlbum:     *req.IsAlbum,
		IsPrivate:   *req.IsPrivate,
		Description: req.Description,
		ImagePath:   req.Image,
		Type:        listType,
	}

	listID, err := h.listRepo.CreateList(r.Context(), list)
	if err != nil {
		writeError(w, errs.Internal("Failed to create list", err))
		return
	}

	// The creator always joins the owner set, whatever the request carries.
	ownerIDs := append([]int64{requester.UserID}, req.OwnerIDs...)
	if err := h.sync.AddListOwners(r.Context(), listID, ownerIDs); err != nil {
		writeError(w, err)
		return
	}

	for _, audioID := range req.AudioIDs {
		if err := h.sync.AddMember(r.Context(), listID, audioID); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "List created successfully",
		"id":      listID,
	})
}

// GetListHandler returns list metadata without its audio, owner or follower
// sets. A cached snapshot is served when present.
func (h *APIHandler) GetListHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	// Strip association sets, the extra endpoints expose them.
	response := *list
	response.Owners = nil
	response.Collaborators = nil
	response.Followers = nil
	response.Audios = nil
	writeJSON(w, http.StatusOK, &response)
}

// GetListFullHandler returns the list with audios, owners, collaborators and
// followers preloaded.
func (h *APIHandler) GetListFullHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	full, err := h.listRepo.GetListFull(r.Context(), list.ID)
	if err != nil || full == nil {
		writeError(w, errs.Internal("Failed to load list", err))
		return
	}
	writeJSON(w, http.StatusOK, full)
}

// GetListAudiosHandler returns the member audios of a list.
func (h *APIHandler) GetListAudiosHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	audios, err := h.listRepo.GetListAudios(r.Context(), list.ID)
	if err != nil {
		writeError(w, errs.Internal("Failed to load list audios", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audios": audios})
}

// GetListOwnersHandler returns the owners of a list.
func (h *APIHandler) GetListOwnersHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	owners, err := h.listRepo.GetListOwners(r.Context(), list.ID)
	if err != nil {
		writeError(w, errs.Internal("Failed to load list owners", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"owners": owners})
}

// GetListFollowersHandler returns the followers of a list.
func (h *APIHandler) GetListFollowersHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	followers, err := h.listRepo.GetListFollowers(r.Context(), list.ID)
	if err != nil {
		writeError(w, errs.Internal("Failed to load list followers", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"followers": followers})
}

// UpdateListRequest represents the update-list request body.
type UpdateListRequest struct {
	Name        *string `json:"name"`
	IsAlbum     *bool   `json:"isAlbum"`
	IsPrivate   *bool   `json:"isPrivate"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	OwnerIDs    []int64 `json:"ownerIds"`
	AudioIDs    []int64 `json:"audios"`
}

// UpdateListHandler applies a partial update of the provided fields. Owner
// and audio lists are unioned in, not replaced.
func (h *APIHandler) UpdateListHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Write)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.BadRequest("Invalid request body"))
		return
	}

	patch := &model.ListPatch{
		Name:        req.Name,
		IsAlbum:     req.IsAlbum,
		IsPrivate:   req.IsPrivate,
		Description: req.Description,
		ImagePath:   req.Image,
	}
	if err := h.listRepo.UpdateList(r.Context(), list.ID, patch); err != nil {
		writeError(w, errs.Internal("Failed to update list", err))
		return
	}

	if len(req.OwnerIDs) > 0 {
		if err := h.sync.AddListOwners(r.Context(), list.ID, req.OwnerIDs); err != nil {
			writeError(w, err)
			return
		}
	}
	for _, audioID := range req.AudioIDs {
		if err := h.sync.AddMember(r.Context(), list.ID, audioID); err != nil {
			writeError(w, err)
			return
		}
	}

	cache.InvalidateList(r.Context(), list.ID)
	h.hub.Broadcast(notify.Event{Type: notify.EventListUpdated, ListID: list.ID})
	writeMessage(w, "List updated successfully")
}

// DeleteListHandler deletes a list. Collaborators may not delete, only
// owners or an admin.
func (h *APIHandler) DeleteListHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Write)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.listRepo.DeleteList(r.Context(), list.ID); err != nil {
		writeError(w, errs.Internal("Failed to delete list", err))
		return
	}

	cache.InvalidateList(r.Context(), list.ID)
	h.hub.Broadcast(notify.Event{Type: notify.EventListDeleted, ListID: list.ID})
	writeMessage(w, "List deleted successfully")
}

// FollowListHandler subscribes the requester to the list.
func (h *APIHandler) FollowListHandler(w http.ResponseWriter, r *http.Request) {
	requester, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sync.Follow(r.Context(), list.ID, requester.UserID); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateList(r.Context(), list.ID)
	writeMessage(w, "List followed successfully")
}

// UnfollowListHandler removes the requester's subscription. A repeated
// unfollow is a no-op, not an error.
func (h *APIHandler) UnfollowListHandler(w http.ResponseWriter, r *http.Request) {
	requester, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sync.Unfollow(r.Context(), list.ID, requester.UserID); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateList(r.Context(), list.ID)
	writeMessage(w, "List unfollowed successfully")
}

// AddListAudioHandler adds an audio to the list. Collaborators are allowed
// here, membership is their granted write level.
func (h *APIHandler) AddListAudioHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForMembership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	audioID, err := pathID(r, "audioId")
	if err != nil {
		writeError(w, errs.BadRequest("Invalid audio id"))
		return
	}

	if err := h.sync.AddMember(r.Context(), list.ID, audioID); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateList(r.Context(), list.ID)
	h.hub.Broadcast(notify.Event{Type: notify.EventMemberAdded, ListID: list.ID})
	writeMessage(w, "Audio added to list successfully")
}

// RemoveListAudioHandler removes an audio from the list.
func (h *APIHandler) RemoveListAudioHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForMembership(r)
	if err != nil {
		writeError(w, err)
		return
	}

	audioID, err := pathID(r, "audioId")
	if err != nil {
		writeError(w, errs.BadRequest("Invalid audio id"))
		return
	}

	if err := h.sync.RemoveMember(r.Context(), list.ID, audioID); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateList(r.Context(), list.ID)
	h.hub.Broadcast(notify.Event{Type: notify.EventMemberRemoved, ListID: list.ID})
	writeMessage(w, "Audio removed from list successfully")
}

// AddListCollaboratorHandler grants a user collaborator authority. Only
// owners or an admin may change the collaborator set.
func (h *APIHandler) AddListCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Write)
	if err != nil {
		writeError(w, err)
		return
	}

	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, errs.BadRequest("Invalid user id"))
		return
	}

	if err := h.sync.AddCollaborator(r.Context(), list.ID, userID); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateList(r.Context(), list.ID)
	writeMessage(w, "Collaborator added successfully")
}

// RemoveListCollaboratorHandler revokes a user's collaborator authority.
func (h *APIHandler) RemoveListCollaboratorHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Write)
	if err != nil {
		writeError(w, err)
		return
	}

	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, errs.BadRequest("Invalid user id"))
		return
	}

	if err := h.sync.RemoveCollaborator(r.Context(), list.ID, userID); err != nil {
		writeError(w, err)
		return
	}

	cache.InvalidateList(r.Context(), list.ID)
	writeMessage(w, "Collaborator removed successfully")
}

// GetUserListsHandler returns the lists a user owns.
func (h *APIHandler) GetUserListsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, errs.BadRequest("Invalid user id"))
		return
	}

	lists, err := h.listRepo.GetListsByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, errs.Internal("Failed to load lists", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lists": h.visibleLists(r, lists)})
}

// GetFollowedListsHandler returns the lists a user follows.
func (h *APIHandler) GetFollowedListsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, errs.BadRequest("Invalid user id"))
		return
	}

	lists, err := h.listRepo.GetFollowedLists(r.Context(), userID)
	if err != nil {
		writeError(w, errs.Internal("Failed to load lists", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"lists": h.visibleLists(r, lists)})
}

// visibleLists filters out private lists the requester may not read.
func (h *APIHandler) visibleLists(r *http.Request, lists []*model.List) []*model.List {
	requester, _ := RequesterFromContext(r.Context())
	visible := make([]*model.List, 0, len(lists))
	for _, list := range lists {
		if !list.IsPrivate {
			visible = append(visible, list)
			continue
		}
		full, err := h.listRepo.GetListByID(r.Context(), list.ID)
		if err != nil || full == nil {
			continue
		}
		if decision, err := access.CanAccess(requester, full, access.Read); err == nil && decision == access.Allow {
			visible = append(visible, list)
		}
	}
	return visible
}

// pathID parses an int64 route variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// loadListForAccess resolves the {id} route variable, loads the list with
// owners and collaborators, and evaluates access at the required level.
// Reads are answered from the cache when possible.
func (h *APIHandler) loadListForAccess(r *http.Request, level access.Level) (access.Requester, *model.List, error) {
	requester, ok := RequesterFromContext(r.Context())
	if !ok {
		return access.Requester{}, nil, errs.New(errs.KindUnauthorized, "Unauthorized")
	}

	id, err := pathID(r, "id")
	if err != nil {
		return requester, nil, errs.BadRequest("Invalid list id")
	}

	var list *model.List
	if level == access.Read {
		if cached, err := cache.GetList(r.Context(), id); err == nil && cached != nil {
			list = cached
		}
	}
	if list == nil {
		list, err = h.listRepo.GetListByID(r.Context(), id)
		if err != nil {
			return requester, nil, errs.Internal("Failed to load list", err)
		}
		if list == nil {
			return requester, nil, errs.NotFound("List not found")
		}
		if level == access.Read {
			if err := cache.SetList(r.Context(), list); err != nil {
				logger.Warn("Failed to cache list", logger.Int64("listId", id), logger.ErrorField(err))
			}
		}
	}

	decision, err := access.CanAccess(requester, list, level)
	if err != nil {
		logger.Error("List owner set is inconsistent", logger.Int64("listId", id))
		return requester, nil, err
	}
	if decision != access.Allow {
		return requester, nil, errs.Forbidden("Unauthorized")
	}
	return requester, list, nil
}

// loadListForMembership is loadListForAccess at the membership-write level,
// which additionally admits collaborators.
func (h *APIHandler) loadListForMembership(r *http.Request) (access.Requester, *model.List, error) {
	requester, ok := RequesterFromContext(r.Context())
	if !ok {
		return access.Requester{}, nil, errs.New(errs.KindUnauthorized, "Unauthorized")
	}

	id, err := pathID(r, "id")
	if err != nil {
		return requester, nil, errs.BadRequest("Invalid list id")
	}

	list, err := h.listRepo.GetListByID(r.Context(), id)
	if err != nil {
		return requester, nil, errs.Internal("Failed to load list", err)
	}
	if list == nil {
		return requester, nil, errs.NotFound("List not found")
	}

	decision, err := access.CanManageMembership(requester, list)
	if err != nil {
		logger.Error("List owner set is inconsistent", logger.Int64("listId", id))
		return requester, nil, err
	}
	if decision != access.Allow {
		return requester, nil, errs.Forbidden("Unauthorized")
	}
	return requester, list, nil
}
