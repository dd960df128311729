package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the API on r. requireClient guards the client area.
func (h *Handler) Routes(r chi.Router, requireClient func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// public site
		r.Get("/home", h.HomeHandler)
		r.Get("/guides/{slug}", h.GuideHandler)
		r.Get("/faq", h.FAQHandler)
		r.Get("/services/{slug}", h.ServiceHandler)
		r.Get("/scholarships", h.ScholarshipsHandler)
		r.Get("/scholarships/{slug}", h.ScholarshipHandler)
		r.Get("/categories", h.CategoriesHandler)
		r.Get("/simulator", h.SimulatorHandler)
		r.Post("/simulations", h.CreateSimulationHandler)
		r.Post("/contact", h.ContactHandler)

		// client area
		r.Group(func(r chi.Router) {
			r.Use(requireClient)

			r.Get("/me/dashboard", h.DashboardHandler)
			r.Get("/me/messages", h.MessagesHandler)

			r.Post("/dossiers/new/{categoryId}", h.CreateDossierHandler)
			r.Get("/dossiers/{dossierId}", h.DossierDetailHandler)
			r.Post("/dossiers/{dossierId}/documents", h.UploadDocumentsHandler)
			r.Get("/dossiers/{dossierId}/offers", h.OffersHandler)
			r.Post("/dossiers/{dossierId}/payment/{offerId}", h.PaymentHandler)

			r.Get("/wizard/{categoryId}", h.StartWizardHandler)
			r.Get("/wizard/{categoryId}/{dossierId}", h.WizardHandler)
			r.Post("/wizard/{categoryId}/{dossierId}", h.WizardStepHandler)
		})
	})
}
