package server

import (
	"encoding/json"
	"net/http"

	"github.com/Garicore01/PlayBeat-Backend/config"
	"github.com/Garicore01/PlayBeat-Backend/core/auth"
	"github.com/Garicore01/PlayBeat-Backend/core/notify"
	"github.com/Garicore01/PlayBeat-Backend/core/relation"
	"github.com/Garicore01/PlayBeat-Backend/errs"
	"github.com/Garicore01/PlayBeat-Backend/logger"
	"github.com/Garicore01/PlayBeat-Backend/repository"
	"github.com/Garicore01/PlayBeat-Backend/storage"
)

// APIHandler bundles the dependencies of every HTTP handler.
type APIHandler struct {
	userRepo  repository.UserRepository
	audioRepo repository.AudioRepository
	listRepo  repository.ListRepository
	tagRepo   repository.TagRepository
	reconRepo repository.ReconciliationRepository
	sync      *relation.Synchronizer
	store     storage.ObjectStore
	spool     *storage.Spool
	hub       *notify.Hub
	tokens    *auth.TokenIssuer
	cfg       *config.Config
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	audioRepo repository.AudioRepository,
	listRepo repository.ListRepository,
	tagRepo repository.TagRepository,
	reconRepo repository.ReconciliationRepository,
	sync *relation.Synchronizer,
	store storage.ObjectStore,
	spool *storage.Spool,
	hub *notify.Hub,
	tokens *auth.TokenIssuer,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:  userRepo,
		audioRepo: audioRepo,
		listRepo:  listRepo,
		tagRepo:   tagRepo,
		reconRepo: reconRepo,
		sync:      sync,
		store:     store,
		spool:     spool,
		hub:       hub,
		tokens:    tokens,
		cfg:       cfg,
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

// writeError maps err to an HTTP status and a short client-safe message.
// Causes are logged server-side only.
func writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", logger.ErrorField(err))
	} else {
		logger.Warn("Request rejected", logger.ErrorField(err))
	}
	http.Error(w, errs.MessageOf(err), status)
}

// writeMessage sends a {"message": ...} body.
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}
