package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"regassist.in/nbfc-chatbot/internal/core"
	"regassist.in/nbfc-chatbot/internal/store"
)

// APIHandler exposes the chatbot over HTTP. Each session owns its own
// Chatbot (and therefore its own history); the backend underneath is
// shared and stateless across sessions.
type APIHandler struct {
	backend core.Backend
	topics  []string

	mu       sync.RWMutex
	sessions map[string]*core.Chatbot
}

// NewAPIHandler wires the shared backend. topics may be nil when the
// active backend has no canned topic table.
func NewAPIHandler(backend core.Backend, topics []string) *APIHandler {
	return &APIHandler{
		backend:  backend,
		topics:   topics,
		sessions: make(map[string]*core.Chatbot),
	}
}

func (h *APIHandler) session(id string) (*core.Chatbot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	bot, ok := h.sessions[id]
	return bot, ok
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()

	h.mu.Lock()
	h.sessions[id] = core.NewChatbot(h.backend)
	h.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateSessionResponse{SessionID: id})
}

type AskRequest struct {
	Question string `json:"question"`
}

func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	bot, ok := h.session(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "Question cannot be empty", http.StatusBadRequest)
		return
	}

	// Ask never fails; failures come back as an answer explaining the
	// problem, so the HTTP status is 200 either way.
	result := bot.Ask(r.Context(), req.Question)
	json.NewEncoder(w).Encode(result)
}

type HistoryResponse struct {
	Turns []store.ConversationTurn `json:"turns"`
}

func (h *APIHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	bot, ok := h.session(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	turns := bot.History()
	if turns == nil {
		turns = []store.ConversationTurn{}
	}
	json.NewEncoder(w).Encode(HistoryResponse{Turns: turns})
}

func (h *APIHandler) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	bot, ok := h.session(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	bot.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

type TranscriptRequest struct {
	Path string `json:"path"`
}

func (h *APIHandler) SaveTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	bot, ok := h.session(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		req.Path = "transcripts" + string(os.PathSeparator) + sessionID + ".txt"
	}

	if err := bot.SaveTranscript(req.Path); err != nil {
		log.Printf("Error saving transcript for session %s: %v", sessionID, err)
		http.Error(w, "Failed to save transcript", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"path": req.Path})
}

func (h *APIHandler) ListTopicsHandler(w http.ResponseWriter, r *http.Request) {
	if h.topics == nil {
		http.Error(w, "Topic listing is only available in demo mode", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(map[string][]string{"topics": h.topics})
}
