package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// maxBodySize bounds the size of a saved document
const maxBodySize = 8 << 20

// DefaultAddr is the address the storage service listens on
const DefaultAddr = ":3001"

type saveRequest struct {
	ID      string          `json:"id,omitempty"`
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves POST /documents and GET /documents/{id}
type Handler struct {
	store Store
	log   *slog.Logger
	mux   *http.ServeMux
}

// NewHandler creates the HTTP handler for s
func NewHandler(s Store, logger *slog.Logger) *Handler {
	h := &Handler{store: s, log: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /documents", h.handleSave)
	h.mux.HandleFunc("GET /documents/{id}", h.handleLoad)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	if strings.TrimSpace(req.Title) == "" && len(req.Content) == 0 {
		jsonResponse(w, http.StatusBadRequest, errorResponse{Error: "title or content is required"})
		return
	}

	d, err := h.store.Save(r.Context(), Document{ID: req.ID, Title: req.Title, Content: req.Content})
	if err != nil {
		h.fail(w, err)
		return
	}
	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	jsonResponse(w, status, d)
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		jsonResponse(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if h.log != nil {
		h.log.Error("storage request failed", "error", err)
	}
	jsonResponse(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
