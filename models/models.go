package models

// Case status
type DossierStatus string

const (
	StatusDraft           DossierStatus = "draft"
	StatusUnderReview     DossierStatus = "under_review"
	StatusValidated       DossierStatus = "validated"
	StatusNeedsCorrection DossierStatus = "needs_correction"
)

func (s DossierStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusUnderReview, StatusValidated, StatusNeedsCorrection:
		return true
	}
	return false
}

// Review state of an uploaded document
type ReviewState string

const (
	ReviewPending  ReviewState = "pending"
	ReviewApproved ReviewState = "approved"
	ReviewRejected ReviewState = "rejected"
)

// Checklist status for a requirement that has no row yet.
const ChecklistMissing = "missing"

// Travel categories offered by the agency
const (
	CategoryStudent = "etudiant"
	CategoryTourism = "tourisme"
	CategoryWork    = "travail"
	CategoryMedical = "medical"
)

var CategoryTitles = map[string]string{
	CategoryStudent: "Visa Étudiant",
	CategoryTourism: "Tourisme & Vacances",
	CategoryWork:    "Permis de Travail",
	CategoryMedical: "Évacuation Sanitaire",
}

// Wizard step 1: trip basics
type TripForm struct {
	OriginCity         string `json:"originCity" validate:"required,max=100"`
	DestinationCountry string `json:"destinationCountry" validate:"required,max=100"`
	PlannedDate        string `json:"plannedDate" validate:"required,datetime=2006-01-02"`
}

// Wizard step 2: narrative
type NarrativeForm struct {
	HasTraveled bool   `json:"hasTraveled"`
	Motive      string `json:"motive" validate:"max=2000"`
}

// Wizard step 3: institution choice
type InstitutionForm struct {
	InstitutionID int `json:"institutionId" validate:"required,gt=0"`
}

// Contact form of the public site
type ContactForm struct {
	Name    string `json:"name" validate:"required,max=100,singleline"`
	Email   string `json:"email" validate:"required,email,singleline"`
	Phone   string `json:"phone" validate:"required,max=20,singleline"`
	Subject string `json:"subject" validate:"required,oneof=etudiant travail tourisme partenariat autre"`
	Message string `json:"message" validate:"required"`
}

var ContactSubjects = map[string]string{
	"etudiant":    "Visa Étudiant",
	"travail":     "Permis de Travail",
	"tourisme":    "Tourisme / Vacances",
	"partenariat": "Partenariat / Affaires",
	"autre":       "Autre demande",
}

// Eligibility simulator lead
type SimulationForm struct {
	FullName           string `json:"fullName" validate:"required,max=100"`
	Phone              string `json:"phone" validate:"required,max=20"`
	Age                int    `json:"age" validate:"required,gt=0,lt=130"`
	StudyLevel         string `json:"studyLevel" validate:"required,oneof=bac bac_plus_3 bac_plus_5 doctorat autre"`
	Destination        string `json:"destination" validate:"required,oneof=canada france belgique usa chine autre"`
	FinancialSituation string `json:"financialSituation" validate:"required,oneof=faible moyen fort"`
}

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var StudyLevels = []Choice{
	{"bac", "Diplôme d'État (Bac)"},
	{"bac_plus_3", "Graduat / Licence (Bac+3)"},
	{"bac_plus_5", "Licence / Master (Bac+5)"},
	{"doctorat", "Doctorat"},
	{"autre", "Autre / Professionnel"},
}

var Destinations = []Choice{
	{"canada", "Canada"},
	{"france", "France"},
	{"belgique", "Belgique"},
	{"usa", "USA"},
	{"chine", "Chine"},
	{"autre", "Autre"},
}

var FinancialSituations = []Choice{
	{"faible", "Je n'ai pas encore de budget"},
	{"moyen", "J'ai un garant (Famille)"},
	{"fort", "J'ai mes propres fonds / Compte bloqué"},
}

// Keyword searched in guide destinations for each simulator destination.
var DestinationKeywords = map[string]string{
	"canada":   "Canada",
	"france":   "France",
	"belgique": "Belgique",
	"usa":      "USA",
	"chine":    "Chine",
	"autre":    "Dubaï",
}

func IsDestination(v string) bool {
	for _, c := range Destinations {
		if c.Value == v {
			return true
		}
	}
	return false
}
