package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"assistancevoyage/db"
	"assistancevoyage/internal/eligibility"
	"assistancevoyage/internal/mailer"
	"assistancevoyage/internal/validation"
	"assistancevoyage/models"

	"github.com/go-chi/chi/v5"
	"github.com/jinzhu/now"
)

const (
	homeFeaturedGuides = 3
	homeRecentGuides   = 6
	homeTestimonials   = 4
)

type homePage struct {
	FeaturedGuides []db.Guide         `json:"featuredGuides"`
	RecentGuides   []db.Guide         `json:"recentGuides"`
	Testimonials   []db.Testimonial   `json:"testimonials"`
	Services       []db.TravelService `json:"services"`
}

// HomeHandler returns the content blocks of the landing page.
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var page homePage
	var err error

	if page.FeaturedGuides, err = h.Store.ListGuides(ctx, true, homeFeaturedGuides); err != nil {
		internalError(w, r, "Failed to get guides", err)
		return
	}
	if page.RecentGuides, err = h.Store.ListGuides(ctx, false, homeRecentGuides); err != nil {
		internalError(w, r, "Failed to get guides", err)
		return
	}
	if page.Testimonials, err = h.Store.ListTestimonials(ctx, homeTestimonials); err != nil {
		internalError(w, r, "Failed to get testimonials", err)
		return
	}
	if page.Services, err = h.Store.ListServices(ctx); err != nil {
		internalError(w, r, "Failed to get services", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type guideDocumentView struct {
	db.GuideDocument
	URL string `json:"url"`
}

// GuideHandler returns an active guide with its downloadable forms.
func (h *Handler) GuideHandler(w http.ResponseWriter, r *http.Request) {
	guide, err := h.Store.GetGuideBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Guide not found")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to get guide", err)
		return
	}

	docs, err := h.Store.ListGuideDocuments(r.Context(), guide.ID)
	if err != nil {
		internalError(w, r, "Failed to get guide documents", err)
		return
	}
	views := make([]guideDocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, guideDocumentView{GuideDocument: d, URL: h.mediaURL(d.File)})
	}

	writeJSON(w, http.StatusOK, map[string]any{"guide": guide, "documents": views})
}

func (h *Handler) FAQHandler(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.Store.ListFAQs(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get faq", err)
		return
	}
	writeJSON(w, http.StatusOK, faqs)
}

// ServiceHandler returns a service page and the other services for the menu.
func (h *Handler) ServiceHandler(w http.ResponseWriter, r *http.Request) {
	service, err := h.Store.GetServiceBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to get service", err)
		return
	}

	all, err := h.Store.ListServices(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get services", err)
		return
	}
	others := make([]db.TravelService, 0, len(all))
	for _, s := range all {
		if s.ID != service.ID {
			others = append(others, s)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"service": service, "otherServices": others})
}

type scholarshipView struct {
	db.Scholarship
	DaysLeft int `json:"daysLeft"`
}

// ScholarshipsHandler lists the scholarships still open today, closest
// deadline first.
func (h *Handler) ScholarshipsHandler(w http.ResponseWriter, r *http.Request) {
	today := now.With(h.now()).BeginningOfDay()

	scholarships, err := h.Store.ListOpenScholarships(r.Context(), today)
	if err != nil {
		internalError(w, r, "Failed to get scholarships", err)
		return
	}

	views := make([]scholarshipView, 0, len(scholarships))
	for _, sc := range scholarships {
		views = append(views, scholarshipView{Scholarship: sc, DaysLeft: daysUntil(today, sc.Deadline)})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) ScholarshipHandler(w http.ResponseWriter, r *http.Request) {
	sc, err := h.Store.GetScholarshipBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Scholarship not found")
		return
	}
	if err != nil {
		internalError(w, r, "Failed to get scholarship", err)
		return
	}
	today := now.With(h.now()).BeginningOfDay()
	writeJSON(w, http.StatusOK, scholarshipView{Scholarship: *sc, DaysLeft: daysUntil(today, sc.Deadline)})
}

// daysUntil counts calendar days from today to the deadline date.
func daysUntil(today, deadline time.Time) int {
	day := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, today.Location())
	return int(math.Round(day.Sub(today).Hours() / 24))
}

func (h *Handler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context())
	if err != nil {
		internalError(w, r, "Failed to get categories", err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// SimulatorHandler returns the simulator choices, prefilled from ?dest=.
func (h *Handler) SimulatorHandler(w http.ResponseWriter, r *http.Request) {
	dest := r.URL.Query().Get("dest")
	if !models.IsDestination(dest) {
		dest = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"studyLevels":         models.StudyLevels,
		"destinations":        models.Destinations,
		"financialSituations": models.FinancialSituations,
		"destination":         dest,
	})
}

// CreateSimulationHandler stores a simulator lead and returns its verdict
// with a matching guide when there is one.
func (h *Handler) CreateSimulationHandler(w http.ResponseWriter, r *http.Request) {
	var form models.SimulationForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := validation.Struct(form); err != nil {
		validationError(w, err)
		return
	}

	sim := &db.Simulation{
		FullName:           form.FullName,
		Phone:              form.Phone,
		Age:                form.Age,
		StudyLevel:         form.StudyLevel,
		Destination:        form.Destination,
		FinancialSituation: form.FinancialSituation,
	}
	if err := h.Store.CreateSimulation(r.Context(), sim); err != nil {
		internalError(w, r, "Failed to save simulation", err)
		return
	}

	guide, err := h.Store.FindGuideByDestination(r.Context(), eligibility.GuideKeyword(form.Destination))
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			slog.Warn("guide suggestion failed", "destination", form.Destination, "err", err)
		}
		guide = nil
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"simulation":     sim,
		"result":         eligibility.Evaluate(form),
		"suggestedGuide": guide,
	})
}

const contactFailedMessage = "Une erreur est survenue lors de l'envoi. Veuillez réessayer plus tard."

// ContactHandler forwards the contact form to the agency by email.
func (h *Handler) ContactHandler(w http.ResponseWriter, r *http.Request) {
	var form models.ContactForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := validation.Struct(form); err != nil {
		validationError(w, err)
		return
	}

	if h.Mailer == nil {
		slog.Error("contact email not sent", "err", "no mailer configured")
		writeError(w, http.StatusBadGateway, contactFailedMessage)
		return
	}
	err := h.Mailer.Send([]string{h.AdminEmail}, mailer.ContactSubject(form), mailer.ContactBody(form))
	if err != nil {
		slog.Error("contact email not sent", "err", err)
		writeError(w, http.StatusBadGateway, contactFailedMessage)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Merci ! Votre message a bien été envoyé. Nous vous répondrons rapidement.",
	})
}

func (h *Handler) mediaURL(key string) string {
	if h.Files == nil {
		return key
	}
	return h.Files.URL(key)
}
