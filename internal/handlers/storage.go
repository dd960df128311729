package handlers

import (
	"context"
	"time"

	"assistancevoyage/db"
	"assistancevoyage/models"
)

type StorageInterface interface {
	ListCategories(ctx context.Context) ([]db.Category, error)
	GetCategory(ctx context.Context, id int) (*db.Category, error)
	GetInstitution(ctx context.Context, id int) (*db.Institution, error)
	ListInstitutionsByCountry(ctx context.Context, country string) ([]db.Institution, error)
	GetRequirement(ctx context.Context, id int) (*db.Requirement, error)
	ListRequirements(ctx context.Context, categoryID int, institutionID *int) ([]db.Requirement, error)
	GetOffer(ctx context.Context, id int) (*db.Offer, error)
	ListOffers(ctx context.Context) ([]db.Offer, error)

	CreateDossier(ctx context.Context, d *db.Dossier) error
	GetOrCreateDossier(ctx context.Context, clientID, categoryID int) (*db.Dossier, bool, error)
	GetClientDossier(ctx context.Context, id, clientID int) (*db.Dossier, error)
	ListClientDossiers(ctx context.Context, clientID int) ([]db.Dossier, error)
	UpdateDossierWizard(ctx context.Context, d *db.Dossier) error
	UpdateDossierWizardWithDocuments(ctx context.Context, d *db.Dossier, requirementIDs []int) (int, error)
	UpdateDossierProgress(ctx context.Context, id, completion int, status models.DossierStatus) error
	UpdateDossierPayment(ctx context.Context, d *db.Dossier) error

	ListSubmittedDocuments(ctx context.Context, dossierID int) ([]db.SubmittedDocument, error)
	SaveUpload(ctx context.Context, dossierID, requirementID int, path string, at time.Time) (*db.SubmittedDocument, string, error)

	ListGuides(ctx context.Context, featured bool, limit int) ([]db.Guide, error)
	GetGuideBySlug(ctx context.Context, slug string) (*db.Guide, error)
	FindGuideByDestination(ctx context.Context, keyword string) (*db.Guide, error)
	ListGuideDocuments(ctx context.Context, guideID int) ([]db.GuideDocument, error)
	ListTestimonials(ctx context.Context, limit int) ([]db.Testimonial, error)
	ListFAQs(ctx context.Context) ([]db.FAQ, error)
	ListServices(ctx context.Context) ([]db.TravelService, error)
	GetServiceBySlug(ctx context.Context, slug string) (*db.TravelService, error)
	ListOpenScholarships(ctx context.Context, today time.Time) ([]db.Scholarship, error)
	GetScholarshipBySlug(ctx context.Context, slug string) (*db.Scholarship, error)
	CreateSimulation(ctx context.Context, sim *db.Simulation) error
}
