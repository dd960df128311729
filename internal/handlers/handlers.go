package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"assistancevoyage/db"
	"assistancevoyage/internal/auth"
	"assistancevoyage/internal/dossier"
	"assistancevoyage/internal/flash"
	"assistancevoyage/internal/mailer"
	"assistancevoyage/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// FileStore persists uploaded documents.
type FileStore interface {
	SaveUpload(dossierID, requirementID int, fh *multipart.FileHeader) (string, error)
	Remove(key string) error
	URL(key string) string
}

// Options carries the collaborators of a Handler besides storage.
type Options struct {
	Files          FileStore
	Mailer         mailer.Mailer
	Flash          flash.Store
	AdminEmail     string
	MaxUploadBytes int64
	Policy         dossier.Policy
}

// Handler wraps storage and the services the endpoints need.
type Handler struct {
	Store          StorageInterface
	Tracker        *dossier.Tracker
	Files          FileStore
	Mailer         mailer.Mailer
	Flash          flash.Store
	AdminEmail     string
	MaxUploadBytes int64

	now func() time.Time
}

func NewHandler(store StorageInterface, opts Options) *Handler {
	if opts.Flash == nil {
		opts.Flash = flash.NewMemoryStore()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		Store:          store,
		Tracker:        dossier.NewTracker(store, opts.Policy),
		Files:          opts.Files,
		Mailer:         opts.Mailer,
		Flash:          opts.Flash,
		AdminEmail:     opts.AdminEmail,
		MaxUploadBytes: opts.MaxUploadBytes,
		now:            time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// PingHandler answers "ok" so probes can check the server.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err with the request id and answers 500.
func internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "err", err, "request_id", middleware.GetReqID(r.Context()))
	writeError(w, http.StatusInternalServerError, msg)
}

// validationError answers 422 with the field messages of err, or 400 when
// err is not a validation failure.
func validationError(w http.ResponseWriter, err error) {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "Validation failed",
			"errors":  fields,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// decodeJSON reads a bounded JSON body into v. It answers 400 itself and
// returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return false
	}
	return true
}

// urlParamID parses a positive integer path parameter.
func urlParamID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func currentClient(w http.ResponseWriter, r *http.Request) (int, bool) {
	clientID, ok := auth.ClientID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return 0, false
	}
	return clientID, true
}

// loadDossier resolves {dossierId} for the calling client.
func (h *Handler) loadDossier(w http.ResponseWriter, r *http.Request) (*db.Dossier, int, bool) {
	clientID, ok := currentClient(w, r)
	if !ok {
		return nil, 0, false
	}
	dossierID, ok := urlParamID(w, r, "dossierId")
	if !ok {
		return nil, 0, false
	}

	d, err := h.Store.GetClientDossier(r.Context(), dossierID, clientID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Dossier not found")
		return nil, 0, false
	}
	if err != nil {
		internalError(w, r, "Failed to get dossier", err)
		return nil, 0, false
	}
	return d, clientID, true
}

// notify queues a flash message. Failures are logged only.
func (h *Handler) notify(ctx context.Context, clientID int, level flash.Level, text string) {
	if err := h.Flash.Add(ctx, clientID, flash.Message{Level: level, Text: text}); err != nil {
		slog.Warn("failed to queue flash message", "client_id", clientID, "err", err)
	}
}

// MessagesHandler pops the caller's flash messages.
func (h *Handler) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentClient(w, r)
	if !ok {
		return
	}
	msgs, err := h.Flash.Pop(r.Context(), clientID)
	if err != nil {
		internalError(w, r, "Failed to get messages", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
