package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"assistancevoyage/db"
	"assistancevoyage/internal/dossier"
	"assistancevoyage/internal/flash"
	"assistancevoyage/internal/validation"
	"assistancevoyage/models"
)

// wizardRequest is the body of a wizard step submission. Only the fields
// of the posted step are read.
type wizardRequest struct {
	Step   int    `json:"step"`
	Action string `json:"action"`
	models.TripForm
	models.NarrativeForm
	models.InstitutionForm
}

func wizardURL(categoryID, dossierID int) string {
	return fmt.Sprintf("/api/wizard/%d/%d", categoryID, dossierID)
}

// StartWizardHandler opens a new draft dossier at the first step.
func (h *Handler) StartWizardHandler(w http.ResponseWriter, r *http.Request) {
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

	d := &db.Dossier{
		ClientID:   clientID,
		CategoryID: &categoryID,
		Status:     models.StatusDraft,
		WizardStep: int(dossier.StepTrip),
	}
	if err := h.Store.CreateDossier(r.Context(), d); err != nil {
		internalError(w, r, "Failed to create dossier", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"dossier": d,
		"next":    wizardURL(categoryID, d.ID),
	})
}

// loadWizardDossier resolves the dossier and checks it belongs to the
// category in the path.
func (h *Handler) loadWizardDossier(w http.ResponseWriter, r *http.Request) (*db.Dossier, int, bool) {
	categoryID, ok := urlParamID(w, r, "categoryId")
	if !ok {
		return nil, 0, false
	}
	d, clientID, ok := h.loadDossier(w, r)
	if !ok {
		return nil, 0, false
	}
	if d.CategoryID == nil || *d.CategoryID != categoryID {
		writeError(w, http.StatusNotFound, "Dossier not found")
		return nil, 0, false
	}
	return d, clientID, true
}

// WizardHandler returns the persisted step with what its form needs.
func (h *Handler) WizardHandler(w http.ResponseWriter, r *http.Request) {
	d, _, ok := h.loadWizardDossier(w, r)
	if !ok {
		return
	}
	step := dossier.CurrentStep(d)

	resp := map[string]any{
		"dossier":    d,
		"step":       step,
		"stepName":   step.String(),
		"totalSteps": dossier.TotalSteps,
	}

	switch step {
	case dossier.StepInstitution:
		institutions, err := h.Store.ListInstitutionsByCountry(r.Context(), d.DestinationCountry)
		if err != nil {
			internalError(w, r, "Failed to get institutions", err)
			return
		}
		resp["institutions"] = institutions
	case dossier.StepDocuments:
		items, err := h.checklist(r, d)
		if err != nil {
			internalError(w, r, "Failed to build checklist", err)
			return
		}
		resp["checklist"] = items
		resp["upload"] = fmt.Sprintf("/api/dossiers/%d/documents", d.ID)
	}

	writeJSON(w, http.StatusOK, resp)
}

// WizardStepHandler validates and saves the posted step. The persisted step
// only moves forward by one, and only from the step it is on.
func (h *Handler) WizardStepHandler(w http.ResponseWriter, r *http.Request) {
	d, clientID, ok := h.loadWizardDossier(w, r)
	if !ok {
		return
	}

	var req wizardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	action := dossier.Action(req.Action)
	if action == "" {
		action = dossier.ActionNext
	}
	posted := dossier.Step(req.Step)

	next, err := dossier.Transition(dossier.CurrentStep(d), posted, action)
	switch {
	case errors.Is(err, dossier.ErrStepOutOfOrder), errors.Is(err, dossier.ErrWizardComplete):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var requirementIDs []int
	materialize := false

	switch posted {
	case dossier.StepTrip:
		if err := validation.Struct(req.TripForm); err != nil {
			validationError(w, err)
			return
		}
		if err := dossier.ApplyTrip(d, req.TripForm); err != nil {
			validationError(w, validation.FieldErrors{"plannedDate": "Enter a valid date (YYYY-MM-DD)."})
			return
		}

	case dossier.StepNarrative:
		if err := validation.Struct(req.NarrativeForm); err != nil {
			validationError(w, err)
			return
		}
		dossier.ApplyNarrative(d, req.NarrativeForm)

	case dossier.StepInstitution:
		if err := validation.Struct(req.InstitutionForm); err != nil {
			validationError(w, err)
			return
		}
		inst, err := h.Store.GetInstitution(r.Context(), req.InstitutionID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			internalError(w, r, "Failed to get institution", err)
			return
		}
		if inst == nil || !dossier.InstitutionAllowed(d, inst) {
			validationError(w, validation.FieldErrors{"institutionId": "Select a valid choice."})
			return
		}
		d.InstitutionID = &inst.ID

		if action == dossier.ActionNext {
			if d.CategoryID == nil {
				h.analyzeError(w, r, &dossier.PreconditionError{DossierID: d.ID, Reason: "no category"})
				return
			}
			requirements, err := h.Store.ListRequirements(r.Context(), *d.CategoryID, d.InstitutionID)
			if err != nil {
				internalError(w, r, "Failed to get requirements", err)
				return
			}
			requirementIDs = dossier.RequirementIDs(dossier.ExpectedRequirements(requirements))
			materialize = true
		}
	}

	d.WizardStep = int(next)
	created := 0
	if materialize {
		created, err = h.Store.UpdateDossierWizardWithDocuments(r.Context(), d, requirementIDs)
	} else {
		err = h.Store.UpdateDossierWizard(r.Context(), d)
	}
	if err != nil {
		internalError(w, r, "Failed to save dossier", err)
		return
	}

	resp := map[string]any{
		"dossier": d,
		"step":    next,
	}

	switch {
	case action == dossier.ActionSaveExit:
		h.notify(r.Context(), clientID, flash.LevelSuccess, "Progression sauvegardée.")
		resp["next"] = "/api/me/dashboard"

	case materialize:
		slog.Info("dossier documents expected", "dossier_id", d.ID, "requirements", len(requirementIDs), "created", created)
		if _, err := h.Tracker.Analyze(r.Context(), d); err != nil {
			h.analyzeError(w, r, err)
			return
		}
		h.notify(r.Context(), clientID, flash.LevelSuccess, "Dossier initialisé avec succès ! Ajoutez maintenant vos documents.")
		resp["created"] = created
		resp["next"] = fmt.Sprintf("/api/dossiers/%d", d.ID)

	default:
		resp["next"] = wizardURL(*d.CategoryID, d.ID)
	}

	writeJSON(w, http.StatusOK, resp)
}
