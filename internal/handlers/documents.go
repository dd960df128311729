package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"assistancevoyage/db"
	"assistancevoyage/internal/dossier"
	"assistancevoyage/internal/flash"
	"assistancevoyage/internal/media"
)

// documentFieldPrefix prefixes multipart file fields: doc_<requirementId>.
const documentFieldPrefix = "doc_"

type pendingUpload struct {
	requirementID int
	field         string
}

// UploadDocumentsHandler stores a batch of files, one per requirement, then
// recomputes completion. Once no mandatory document is missing the response
// points to the offer selection.
func (h *Handler) UploadDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	d, clientID, ok := h.loadDossier(w, r)
	if !ok {
		return
	}
	if h.Files == nil {
		internalError(w, r, "Failed to store documents", errors.New("no file store configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var uploads []pendingUpload
	for field, files := range r.MultipartForm.File {
		if !strings.HasPrefix(field, documentFieldPrefix) || len(files) == 0 {
			continue
		}
		reqID, err := strconv.Atoi(strings.TrimPrefix(field, documentFieldPrefix))
		if err != nil || reqID <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid document field "+field)
			return
		}
		uploads = append(uploads, pendingUpload{requirementID: reqID, field: field})
	}
	if len(uploads) == 0 {
		writeError(w, http.StatusBadRequest, "No document uploaded")
		return
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].requirementID < uploads[j].requirementID })

	// every requirement and file type is checked before anything is written
	for _, u := range uploads {
		req, err := h.Store.GetRequirement(r.Context(), u.requirementID)
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Requirement %d not found", u.requirementID))
			return
		}
		if err != nil {
			internalError(w, r, "Failed to get requirement", err)
			return
		}
		if !dossier.BelongsTo(d, req) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Requirement %d does not apply to this dossier", u.requirementID))
			return
		}
		if err := media.CheckUpload(r.MultipartForm.File[u.field][0]); err != nil {
			if errors.Is(err, media.ErrUnsupportedType) {
				writeError(w, http.StatusUnsupportedMediaType, unsupportedTypeMessage(u.requirementID))
				return
			}
			internalError(w, r, "Failed to read document", err)
			return
		}
	}

	saved := make([]*db.SubmittedDocument, 0, len(uploads))
	for _, u := range uploads {
		key, err := h.Files.SaveUpload(d.ID, u.requirementID, r.MultipartForm.File[u.field][0])
		if errors.Is(err, media.ErrUnsupportedType) {
			writeError(w, http.StatusUnsupportedMediaType, unsupportedTypeMessage(u.requirementID))
			return
		}
		if err != nil {
			internalError(w, r, "Failed to store document", err)
			return
		}

		doc, previous, err := h.Store.SaveUpload(r.Context(), d.ID, u.requirementID, key, h.now())
		if err != nil {
			h.removeFile(key)
			internalError(w, r, "Failed to save document", err)
			return
		}
		if previous != "" && previous != key {
			h.removeFile(previous)
		}
		saved = append(saved, doc)
	}

	missing, err := h.Tracker.Analyze(r.Context(), d)
	if err != nil {
		h.analyzeError(w, r, err)
		return
	}
	resp := map[string]any{
		"uploaded":   saved,
		"dossier":    d,
		"missing":    missing,
		"completion": d.Completion,
	}
	if len(missing) == 0 {
		resp["next"] = fmt.Sprintf("/api/dossiers/%d/offers", d.ID)
		h.notify(r.Context(), clientID, flash.LevelSuccess, "Tous vos documents ont été reçus. Choisissez maintenant votre offre.")
	} else {
		h.notify(r.Context(), clientID, flash.LevelSuccess, "Documents envoyés.")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) removeFile(key string) {
	if err := h.Files.Remove(key); err != nil {
		slog.Warn("failed to remove media file", "key", key, "err", err)
	}
}

func unsupportedTypeMessage(requirementID int) string {
	return fmt.Sprintf("Document %d must be a PDF, JPEG or PNG file", requirementID)
}
