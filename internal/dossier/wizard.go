package dossier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"assistancevoyage/db"
	"assistancevoyage/models"
)

// Step is a position in the dossier creation wizard.
type Step int

const (
	StepTrip        Step = 1 // origin, destination, planned date
	StepNarrative   Step = 2 // travel history and motive
	StepInstitution Step = 3 // institution in the destination country
	StepDocuments   Step = 4 // recap and uploads, terminal
)

// TotalSteps is the number of wizard steps.
const TotalSteps = int(StepDocuments)

func (s Step) Valid() bool {
	return s >= StepTrip && s <= StepDocuments
}

func (s Step) String() string {
	switch s {
	case StepTrip:
		return "trip"
	case StepNarrative:
		return "narrative"
	case StepInstitution:
		return "institution"
	case StepDocuments:
		return "documents"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Action is what the client asked for when posting a step.
type Action string

const (
	ActionNext     Action = "next"
	ActionSaveExit Action = "save_exit"
)

var (
	ErrUnknownStep    = errors.New("unknown wizard step")
	ErrUnknownAction  = errors.New("unknown wizard action")
	ErrStepOutOfOrder = errors.New("wizard step is ahead of the dossier")
	ErrWizardComplete = errors.New("wizard has no form on the documents step")
)

// CurrentStep reads the persisted step. Anything unset or out of range
// starts over at the trip step, anything past the end is the terminal step.
func CurrentStep(d *db.Dossier) Step {
	s := Step(d.WizardStep)
	switch {
	case s < StepTrip:
		return StepTrip
	case s > StepDocuments:
		return StepDocuments
	}
	return s
}

// Transition validates a posted step against the persisted one and returns
// the step to persist. The persisted step never decreases: posting an
// earlier step edits its data in place.
func Transition(current, posted Step, action Action) (Step, error) {
	if !posted.Valid() {
		return current, ErrUnknownStep
	}
	if posted > current {
		return current, ErrStepOutOfOrder
	}

	switch action {
	case ActionSaveExit:
		return current, nil
	case ActionNext:
		if posted == StepDocuments {
			return current, ErrWizardComplete
		}
		if posted == current {
			return current + 1, nil
		}
		return current, nil
	}
	return current, ErrUnknownAction
}

// ApplyTrip copies a validated step 1 form onto the dossier.
func ApplyTrip(d *db.Dossier, f models.TripForm) error {
	date, err := time.Parse("2006-01-02", f.PlannedDate)
	if err != nil {
		return fmt.Errorf("planned date: %w", err)
	}
	d.OriginCity = strings.TrimSpace(f.OriginCity)
	d.DestinationCountry = strings.TrimSpace(f.DestinationCountry)
	d.PlannedDate = &date
	return nil
}

// ApplyNarrative copies a validated step 2 form onto the dossier.
func ApplyNarrative(d *db.Dossier, f models.NarrativeForm) {
	d.HasTraveled = f.HasTraveled
	d.Motive = strings.TrimSpace(f.Motive)
}

// InstitutionAllowed reports whether the institution may be chosen for the
// dossier: it has to be in the destination picked on step 1.
func InstitutionAllowed(d *db.Dossier, inst *db.Institution) bool {
	return d.DestinationCountry != "" && strings.EqualFold(inst.Country, d.DestinationCountry)
}

// ExpectedRequirements merges category and institution requirements,
// keeping the first occurrence of each id.
func ExpectedRequirements(sets ...[]db.Requirement) []db.Requirement {
	seen := map[int]bool{}
	var out []db.Requirement
	for _, set := range sets {
		for _, r := range set {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	return out
}

// RequirementIDs lists the ids of rs in order.
func RequirementIDs(rs []db.Requirement) []int {
	ids := make([]int, len(rs))
	for i, r := range rs {
		ids[i] = r.ID
	}
	return ids
}

// BelongsTo reports whether the requirement applies to the dossier.
func BelongsTo(d *db.Dossier, r *db.Requirement) bool {
	if d.CategoryID == nil {
		return false
	}
	return owns(d, *r)
}
