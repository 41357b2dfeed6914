package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the HTTP route table for the API.
func NewRouter(apiHandler *APIHandler) *mux.Router {
	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Authentication endpoints
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Audio endpoints
	router.HandleFunc("/api/audio", apiHandler.AuthMiddleware(apiHandler.CreateAudioHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/audio/{id}", apiHandler.AuthMiddleware(apiHandler.GetAudioHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/audio/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateAudioHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/audio/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteAudioHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/audio/{id}/stream", apiHandler.AuthMiddleware(apiHandler.StreamAudioHandler)).Methods(http.MethodGet)

	// List endpoints
	router.HandleFunc("/api/list", apiHandler.AuthMiddleware(apiHandler.CreateListHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/list/{id}", apiHandler.AuthMiddleware(apiHandler.GetListHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/list/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateListHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/list/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteListHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/list/{id}/full", apiHandler.AuthMiddleware(apiHandler.GetListFullHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/list/{id}/audios", apiHandler.AuthMiddleware(apiHandler.GetListAudiosHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/list/{id}/owners", apiHandler.AuthMiddleware(apiHandler.GetListOwnersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/list/{id}/followers", apiHandler.AuthMiddleware(apiHandler.GetListFollowersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/list/{id}/follow", apiHandler.AuthMiddleware(apiHandler.FollowListHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/list/{id}/follow", apiHandler.AuthMiddleware(apiHandler.UnfollowListHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/list/{id}/audio/{audioId}", apiHandler.AuthMiddleware(apiHandler.AddListAudioHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/list/{id}/audio/{audioId}", apiHandler.AuthMiddleware(apiHandler.RemoveListAudioHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/list/{id}/collaborator/{userId}", apiHandler.AuthMiddleware(apiHandler.AddListCollaboratorHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/list/{id}/collaborator/{userId}", apiHandler.AuthMiddleware(apiHandler.RemoveListCollaboratorHandler)).Methods(http.MethodDelete)

	// User list endpoints
	router.HandleFunc("/api/user/{id}/lists", apiHandler.AuthMiddleware(apiHandler.GetUserListsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/user/{id}/followed", apiHandler.AuthMiddleware(apiHandler.GetFollowedListsHandler)).Methods(http.MethodGet)

	// Follower event stream
	router.HandleFunc("/ws/list/{id}", apiHandler.AuthMiddleware(apiHandler.SubscribeListHandler)).Methods(http.MethodGet)

	return router
}
