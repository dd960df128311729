package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"assistancevoyage/db"
	"assistancevoyage/internal/dossier"
	"assistancevoyage/internal/flash"
	"assistancevoyage/models"
)

// DashboardHandler lists the caller's dossiers and the categories they can
// open a dossier for.
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentClient(w, r)
	if !ok {
		return
	}

	dossiers, err := h.Store.ListClientDossiers(r.Context(), clientID)
	if err != nil {
		internalError(w, r, "Failed to get dossiers", err)
		return
	}
	categories, err := h.Store.ListCategories(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get categories", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dossiers": dossiers, "categories": categories})
}

// CreateDossierHandler returns the caller's dossier for the category,
// creating it on first use.
func (h *Handler) CreateDossierHandler(w http.ResponseWriter, r *http.Request) {
	clientID, ok := currentClient(w, r)
	if !ok {
		return
	}
	categoryID, ok := urlParamID(w, r, "categoryId")
	if !ok {
		return
	}

	if _, err := h.Store.GetCategory(r.Context(), categoryID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Category not found")
			return
		}
		internalError(w, r, "Failed to get category", err)
		return
	}

	d, created, err := h.Store.GetOrCreateDossier(r.Context(), clientID, categoryID)
	if err != nil {
		internalError(w, r, "Failed to create dossier", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		slog.Info("dossier created", "dossier_id", d.ID, "client_id", clientID, "category_id", categoryID)
	}
	writeJSON(w, status, d)
}

type checklistItem struct {
	Requirement db.Requirement        `json:"requirement"`
	Document    *db.SubmittedDocument `json:"document"`
	FileURL     string                `json:"fileUrl,omitempty"`
	Status      string                `json:"status"`
}

// checklist pairs every requirement of the dossier with its submitted row.
func (h *Handler) checklist(r *http.Request, d *db.Dossier) ([]checklistItem, error) {
	if d.CategoryID == nil {
		return nil, &dossier.PreconditionError{DossierID: d.ID, Reason: "no category"}
	}
	requirements, err := h.Store.ListRequirements(r.Context(), *d.CategoryID, d.InstitutionID)
	if err != nil {
		return nil, err
	}
	submitted, err := h.Store.ListSubmittedDocuments(r.Context(), d.ID)
	if err != nil {
		return nil, err
	}

	byRequirement := make(map[int]db.SubmittedDocument, len(submitted))
	for _, doc := range submitted {
		byRequirement[doc.RequirementID] = doc
	}

	items := make([]checklistItem, 0, len(requirements))
	for _, req := range dossier.ExpectedRequirements(requirements) {
		item := checklistItem{Requirement: req, Status: models.ChecklistMissing}
		if doc, ok := byRequirement[req.ID]; ok {
			doc := doc
			item.Document = &doc
			if doc.HasFile() {
				item.Status = string(doc.ReviewState)
				item.FileURL = h.mediaURL(*doc.FilePath)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// DossierDetailHandler recomputes completion and returns the dossier with
// its document checklist.
func (h *Handler) DossierDetailHandler(w http.ResponseWriter, r *http.Request) {
	d, _, ok := h.loadDossier(w, r)
	if !ok {
		return
	}

	missing, err := h.Tracker.Analyze(r.Context(), d)
	if err != nil {
		h.analyzeError(w, r, err)
		return
	}
	items, err := h.checklist(r, d)
	if err != nil {
		internalError(w, r, "Failed to build checklist", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dossier":    d,
		"missing":    missing,
		"checklist":  items,
		"step":       dossier.CurrentStep(d),
		"totalSteps": dossier.TotalSteps,
	})
}

func (h *Handler) analyzeError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *dossier.PreconditionError
	if errors.As(err, &pe) {
		writeError(w, http.StatusConflict, pe.Error())
		return
	}
	internalError(w, r, "Failed to analyse dossier", err)
}

// OffersHandler lists the offers the dossier can be paid with.
func (h *Handler) OffersHandler(w http.ResponseWriter, r *http.Request) {
	d, _, ok := h.loadDossier(w, r)
	if !ok {
		return
	}
	offers, err := h.Store.ListOffers(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get offers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dossier": d, "offers": offers})
}

// PaymentHandler confirms a simulated payment of the dossier with an offer.
func (h *Handler) PaymentHandler(w http.ResponseWriter, r *http.Request) {
	d, clientID, ok := h.loadDossier(w, r)
	if !ok {
		return
	}
	offerID, ok := urlParamID(w, r, "offerId")
	if !ok {
		return
	}

	offer, err := h.Store.GetOffer(r.Context(), offerID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !offer.Active) {
		writeError(w, http.StatusNotFound, "Offer not found")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to get offer", err)
		return
	}

	dossier.ConfirmPayment(d, offer, h.now(), dossier.NewPaymentSuffix())
	if err := h.Store.UpdateDossierPayment(r.Context(), d); err != nil {
		internalError(w, r, "Failed to save payment", err)
		return
	}

	slog.Info("payment confirmed", "dossier_id", d.ID, "offer_id", offer.ID, "reference", d.PaymentReference)
	h.notify(r.Context(), clientID, flash.LevelSuccess,
		fmt.Sprintf("Paiement confirmé ! Référence : %s. Votre dossier est en cours de vérification.", d.PaymentReference))

	writeJSON(w, http.StatusOK, map[string]any{
		"dossier":   d,
		"reference": d.PaymentReference,
		"next":      "/api/me/dashboard",
	})
}
