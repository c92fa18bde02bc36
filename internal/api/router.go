package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/topics", apiHandler.ListTopicsHandler)

		r.Post("/sessions", apiHandler.CreateSessionHandler)
		r.Post("/sessions/{sessionID}/ask", apiHandler.AskHandler)
		r.Get("/sessions/{sessionID}/history", apiHandler.GetHistoryHandler)
		r.Delete("/sessions/{sessionID}/history", apiHandler.ClearHistoryHandler)
		r.Post("/sessions/{sessionID}/transcript", apiHandler.SaveTranscriptHandler)
	})

	return r
}
