// Package dossier holds the case rules: document completion, the wizard
// state machine and payment confirmation.
package dossier

import (
	"context"
	"fmt"
	"sort"

	"assistancevoyage/db"
	"assistancevoyage/models"
)

// PreconditionError reports a dossier that cannot be analysed as stored.
type PreconditionError struct {
	DossierID int
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("dossier %d: %s", e.DossierID, e.Reason)
}

// Policy selects how submitted rows satisfy a requirement.
type Policy struct {
	// StrictReview stops rejected documents from counting as submitted.
	StrictReview bool
}

// Result is the outcome of a completion analysis.
type Result struct {
	Missing    []int                `json:"missing"`
	Completion int                  `json:"completion"`
	Status     models.DossierStatus `json:"status"`
}

// Compute diffs the mandatory requirements of the dossier against its
// submitted rows and applies the draft -> under_review transition. The
// requirements passed in may include non mandatory ones and duplicates.
func Compute(d *db.Dossier, requirements []db.Requirement, submitted []db.SubmittedDocument, p Policy) (Result, error) {
	if d.CategoryID == nil {
		return Result{}, &PreconditionError{DossierID: d.ID, Reason: "no category"}
	}

	required := map[int]struct{}{}
	for _, r := range requirements {
		if r.Mandatory && owns(d, r) {
			required[r.ID] = struct{}{}
		}
	}

	satisfied := map[int]struct{}{}
	for _, doc := range submitted {
		if counts(doc, p) {
			satisfied[doc.RequirementID] = struct{}{}
		}
	}

	missing := make([]int, 0, len(required))
	for id := range required {
		if _, ok := satisfied[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Ints(missing)

	completion := 100
	if total := len(required); total > 0 {
		completion = 100 * (total - len(missing)) / total
	}

	status := d.Status
	if completion == 100 && status == models.StatusDraft {
		status = models.StatusUnderReview
	}

	return Result{Missing: missing, Completion: completion, Status: status}, nil
}

func owns(d *db.Dossier, r db.Requirement) bool {
	if r.CategoryID != nil && *r.CategoryID == *d.CategoryID {
		return true
	}
	return r.InstitutionID != nil && d.InstitutionID != nil && *r.InstitutionID == *d.InstitutionID
}

// counts reports whether a row satisfies its requirement. A row only
// materialised by the wizard has no file yet and does not count; this
// deliberately departs from counting every row regardless of its file.
func counts(doc db.SubmittedDocument, p Policy) bool {
	if !doc.HasFile() {
		return false
	}
	if p.StrictReview && doc.ReviewState == models.ReviewRejected {
		return false
	}
	return true
}

// ProgressStore is the storage the tracker needs.
type ProgressStore interface {
	ListRequirements(ctx context.Context, categoryID int, institutionID *int) ([]db.Requirement, error)
	ListSubmittedDocuments(ctx context.Context, dossierID int) ([]db.SubmittedDocument, error)
	UpdateDossierProgress(ctx context.Context, id, completion int, status models.DossierStatus) error
}

// Tracker recomputes and persists dossier completion.
type Tracker struct {
	store  ProgressStore
	policy Policy
}

func NewTracker(store ProgressStore, policy Policy) *Tracker {
	return &Tracker{store: store, policy: policy}
}

// Analyze recomputes completion for d, persists completion and status and
// returns the ids of the missing mandatory requirements. d is updated in
// place. Safe to call on every view.
func (t *Tracker) Analyze(ctx context.Context, d *db.Dossier) ([]int, error) {
	if d.CategoryID == nil {
		return nil, &PreconditionError{DossierID: d.ID, Reason: "no category"}
	}

	requirements, err := t.store.ListRequirements(ctx, *d.CategoryID, d.InstitutionID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	submitted, err := t.store.ListSubmittedDocuments(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list submitted documents: %w", err)
	}

	res, err := Compute(d, requirements, submitted, t.policy)
	if err != nil {
		return nil, err
	}

	if err := t.store.UpdateDossierProgress(ctx, d.ID, res.Completion, res.Status); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	d.Completion = res.Completion
	d.Status = res.Status
	return res.Missing, nil
}
