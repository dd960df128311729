package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"assistancevoyage/db"
	"assistancevoyage/models"
)

// MockStorage implements StorageInterface in memory.
type MockStorage struct {
	mu sync.Mutex

	categories   []db.Category
	institutions []db.Institution
	requirements []db.Requirement
	offers       []db.Offer
	guides       []db.Guide
	guideDocs    []db.GuideDocument
	testimonials []db.Testimonial
	faqs         []db.FAQ
	services     []db.TravelService
	scholarships []db.Scholarship
	simulations  []db.Simulation

	dossiers map[int]db.Dossier
	docs     map[[2]int]db.SubmittedDocument
	nextID   int

	wizardUpdates        int
	createSimulationErr  error
	ListOpenScholarFunc  func(ctx context.Context, today time.Time) ([]db.Scholarship, error)
	UpdateDossierWizFunc func(ctx context.Context, d *db.Dossier) error
}

func intPtr(v int) *int { return &v }

func newMockStorage() *MockStorage {
	return &MockStorage{
		categories: []db.Category{
			{ID: 1, Slug: "visa-etudiant", Name: models.CategoryStudent, Title: "Visa Étudiant"},
			{ID: 2, Slug: "tourisme", Name: models.CategoryTourism, Title: "Tourisme & Vacances"},
		},
		institutions: []db.Institution{
			{ID: 10, Name: "Université Laval", Country: "Canada"},
			{ID: 11, Name: "Sorbonne Université", Country: "France"},
		},
		requirements: []db.Requirement{
			{ID: 1, Name: "Passeport", CategoryID: intPtr(1), Mandatory: true},
			{ID: 2, Name: "Diplôme", CategoryID: intPtr(1), Mandatory: true},
			{ID: 3, Name: "Photo", CategoryID: intPtr(1), Mandatory: false},
			{ID: 4, Name: "Lettre d'admission", InstitutionID: intPtr(10), Mandatory: true},
			{ID: 5, Name: "Billet retour", CategoryID: intPtr(2), Mandatory: true},
			{ID: 6, Name: "Attestation", InstitutionID: intPtr(11), Mandatory: true},
		},
		offers: []db.Offer{
			{ID: 1, Name: "Essentiel", PriceCents: 5000, Credits: 1, Active: true},
			{ID: 2, Name: "Premium", PriceCents: 15000, Credits: 3, Active: true},
			{ID: 3, Name: "Ancienne", PriceCents: 1000, Credits: 1, Active: false},
		},
		dossiers: map[int]db.Dossier{},
		docs:     map[[2]int]db.SubmittedDocument{},
		nextID:   100,
	}
}

func (m *MockStorage) id() int {
	m.nextID++
	return m.nextID
}

// addDossier stores d as is and returns its id.
func (m *MockStorage) addDossier(d db.Dossier) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = m.id()
	}
	m.dossiers[d.ID] = d
	return d.ID
}

func (m *MockStorage) dossier(id int) db.Dossier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dossiers[id]
}

func (m *MockStorage) rows(dossierID int) []db.SubmittedDocument {
	docs, _ := m.ListSubmittedDocuments(context.Background(), dossierID)
	return docs
}

func (m *MockStorage) ListCategories(ctx context.Context) ([]db.Category, error) {
	return m.categories, nil
}

func (m *MockStorage) GetCategory(ctx context.Context, id int) (*db.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) GetInstitution(ctx context.Context, id int) (*db.Institution, error) {
	for _, i := range m.institutions {
		if i.ID == id {
			return &i, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListInstitutionsByCountry(ctx context.Context, country string) ([]db.Institution, error) {
	out := []db.Institution{}
	for _, i := range m.institutions {
		if strings.EqualFold(i.Country, country) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *MockStorage) GetRequirement(ctx context.Context, id int) (*db.Requirement, error) {
	for _, r := range m.requirements {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListRequirements(ctx context.Context, categoryID int, institutionID *int) ([]db.Requirement, error) {
	out := []db.Requirement{}
	for _, r := range m.requirements {
		if (r.CategoryID != nil && *r.CategoryID == categoryID) ||
			(institutionID != nil && r.InstitutionID != nil && *r.InstitutionID == *institutionID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockStorage) GetOffer(ctx context.Context, id int) (*db.Offer, error) {
	for _, o := range m.offers {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListOffers(ctx context.Context) ([]db.Offer, error) {
	out := []db.Offer{}
	for _, o := range m.offers {
		if o.Active {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockStorage) CreateDossier(ctx context.Context, d *db.Dossier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.id()
	d.CreatedAt = time.Now()
	m.dossiers[d.ID] = *d
	return nil
}

func (m *MockStorage) GetOrCreateDossier(ctx context.Context, clientID, categoryID int) (*db.Dossier, bool, error) {
	m.mu.Lock()
	for _, d := range m.dossiers {
		if d.ClientID == clientID && d.CategoryID != nil && *d.CategoryID == categoryID {
			m.mu.Unlock()
			return &d, false, nil
		}
	}
	m.mu.Unlock()

	d := &db.Dossier{ClientID: clientID, CategoryID: &categoryID, Status: models.StatusDraft, WizardStep: 1}
	return d, true, m.CreateDossier(ctx, d)
}

func (m *MockStorage) GetClientDossier(ctx context.Context, id, clientID int) (*db.Dossier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dossiers[id]
	if !ok || d.ClientID != clientID {
		return nil, db.ErrNotFound
	}
	return &d, nil
}

func (m *MockStorage) ListClientDossiers(ctx context.Context, clientID int) ([]db.Dossier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.Dossier{}
	for _, d := range m.dossiers {
		if d.ClientID == clientID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStorage) UpdateDossierWizard(ctx context.Context, d *db.Dossier) error {
	if m.UpdateDossierWizFunc != nil {
		return m.UpdateDossierWizFunc(ctx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wizardUpdates++
	m.dossiers[d.ID] = *d
	return nil
}

func (m *MockStorage) UpdateDossierWizardWithDocuments(ctx context.Context, d *db.Dossier, requirementIDs []int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wizardUpdates++
	m.dossiers[d.ID] = *d
	created := 0
	for _, reqID := range requirementIDs {
		key := [2]int{d.ID, reqID}
		if _, ok := m.docs[key]; ok {
			continue
		}
		m.docs[key] = db.SubmittedDocument{ID: m.id(), DossierID: d.ID, RequirementID: reqID, ReviewState: models.ReviewPending}
		created++
	}
	return created, nil
}

func (m *MockStorage) UpdateDossierProgress(ctx context.Context, id, completion int, status models.DossierStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.dossiers[id]
	d.Completion = completion
	d.Status = status
	m.dossiers[id] = d
	return nil
}

func (m *MockStorage) UpdateDossierPayment(ctx context.Context, d *db.Dossier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dossiers[d.ID] = *d
	return nil
}

func (m *MockStorage) ListSubmittedDocuments(ctx context.Context, dossierID int) ([]db.SubmittedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.SubmittedDocument{}
	for key, doc := range m.docs {
		if key[0] == dossierID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequirementID < out[j].RequirementID })
	return out, nil
}

func (m *MockStorage) SaveUpload(ctx context.Context, dossierID, requirementID int, path string, at time.Time) (*db.SubmittedDocument, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int{dossierID, requirementID}
	doc, ok := m.docs[key]
	previous := ""
	if ok && doc.FilePath != nil {
		previous = *doc.FilePath
	}
	if !ok {
		doc = db.SubmittedDocument{ID: m.id(), DossierID: dossierID, RequirementID: requirementID}
	}
	doc.FilePath = &path
	doc.ReviewState = models.ReviewPending
	doc.AdminComment = ""
	doc.UploadedAt = &at
	m.docs[key] = doc
	return &doc, previous, nil
}

func (m *MockStorage) ListGuides(ctx context.Context, featured bool, limit int) ([]db.Guide, error) {
	out := []db.Guide{}
	for _, g := range m.guides {
		if g.Active && g.Featured == featured && len(out) < limit {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MockStorage) GetGuideBySlug(ctx context.Context, slug string) (*db.Guide, error) {
	for _, g := range m.guides {
		if g.Slug == slug && g.Active {
			return &g, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) FindGuideByDestination(ctx context.Context, keyword string) (*db.Guide, error) {
	for _, g := range m.guides {
		if g.Active && strings.Contains(strings.ToLower(g.Destination), strings.ToLower(keyword)) {
			return &g, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListGuideDocuments(ctx context.Context, guideID int) ([]db.GuideDocument, error) {
	out := []db.GuideDocument{}
	for _, d := range m.guideDocs {
		if d.GuideID == guideID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockStorage) ListTestimonials(ctx context.Context, limit int) ([]db.Testimonial, error) {
	if len(m.testimonials) > limit {
		return m.testimonials[:limit], nil
	}
	return m.testimonials, nil
}

func (m *MockStorage) ListFAQs(ctx context.Context) ([]db.FAQ, error) {
	return m.faqs, nil
}

func (m *MockStorage) ListServices(ctx context.Context) ([]db.TravelService, error) {
	return m.services, nil
}

func (m *MockStorage) GetServiceBySlug(ctx context.Context, slug string) (*db.TravelService, error) {
	for _, s := range m.services {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListOpenScholarships(ctx context.Context, today time.Time) ([]db.Scholarship, error) {
	if m.ListOpenScholarFunc != nil {
		return m.ListOpenScholarFunc(ctx, today)
	}
	out := []db.Scholarship{}
	for _, s := range m.scholarships {
		if s.Active && !s.Deadline.Before(today) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockStorage) GetScholarshipBySlug(ctx context.Context, slug string) (*db.Scholarship, error) {
	for _, s := range m.scholarships {
		if s.Slug == slug {
			return &s, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) CreateSimulation(ctx context.Context, sim *db.Simulation) error {
	if m.createSimulationErr != nil {
		return m.createSimulationErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sim.ID = m.id()
	sim.CreatedAt = time.Now()
	m.simulations = append(m.simulations, *sim)
	return nil
}
