package db

import (
	"context"
	"time"
)

// Guide (destination guide of the public site)
type Guide struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Destination string    `db:"destination" json:"destination"`
	CategoryID  int       `db:"category_id" json:"categoryId"`
	CoverImage  string    `db:"cover_image" json:"coverImage"`
	Content     string    `db:"content" json:"content"`
	Featured    bool      `db:"featured" json:"featured"`
	Slug        string    `db:"slug" json:"slug"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	Active      bool      `db:"active" json:"active"`
}

func (s *Storage) UpsertGuide(ctx context.Context, g *Guide) error {
	query := `
        INSERT INTO guides (title, destination, category_id, cover_image, content, featured, slug, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (slug) DO UPDATE SET
            title = EXCLUDED.title,
            destination = EXCLUDED.destination,
            category_id = EXCLUDED.category_id,
            cover_image = EXCLUDED.cover_image,
            content = EXCLUDED.content,
            featured = EXCLUDED.featured,
            active = EXCLUDED.active
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		g.Title, g.Destination, g.CategoryID, g.CoverImage, g.Content, g.Featured, g.Slug, g.Active).
		Scan(&g.ID, &g.CreatedAt)
}

// ListGuides returns active guides, newest first.
func (s *Storage) ListGuides(ctx context.Context, featured bool, limit int) ([]Guide, error) {
	guides := []Guide{}
	query := `
        SELECT * FROM guides
        WHERE active AND featured = $1
        ORDER BY created_at DESC
        LIMIT $2`
	err := s.db.SelectContext(ctx, &guides, query, featured, limit)
	return guides, err
}

func (s *Storage) GetGuideBySlug(ctx context.Context, slug string) (*Guide, error) {
	g := &Guide{}
	err := s.db.GetContext(ctx, g, `SELECT * FROM guides WHERE slug=$1 AND active`, slug)
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// FindGuideByDestination returns the first active guide whose destination
// contains the keyword.
func (s *Storage) FindGuideByDestination(ctx context.Context, keyword string) (*Guide, error) {
	g := &Guide{}
	query := `
        SELECT * FROM guides
        WHERE active AND destination ILIKE '%' || $1 || '%'
        ORDER BY created_at DESC
        LIMIT 1`
	if err := s.db.GetContext(ctx, g, query, keyword); err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// GuideDocument (downloadable form attached to a guide)
type GuideDocument struct {
	ID         int       `db:"id" json:"id"`
	GuideID    int       `db:"guide_id" json:"guideId"`
	Name       string    `db:"name" json:"name"`
	File       string    `db:"file" json:"file"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
}

func (s *Storage) UpsertGuideDocument(ctx context.Context, d *GuideDocument) error {
	query := `
        INSERT INTO guide_documents (guide_id, name, file)
        VALUES ($1, $2, $3)
        ON CONFLICT (guide_id, name) DO UPDATE SET file = EXCLUDED.file
        RETURNING id, uploaded_at`
	return s.db.QueryRowContext(ctx, query, d.GuideID, d.Name, d.File).Scan(&d.ID, &d.UploadedAt)
}

func (s *Storage) ListGuideDocuments(ctx context.Context, guideID int) ([]GuideDocument, error) {
	docs := []GuideDocument{}
	err := s.db.SelectContext(ctx, &docs, `SELECT * FROM guide_documents WHERE guide_id=$1 ORDER BY id`, guideID)
	return docs, err
}

// Testimonial (visa photo or client review)
type Testimonial struct {
	ID          int       `db:"id" json:"id"`
	ClientName  string    `db:"client_name" json:"clientName"`
	Destination string    `db:"destination" json:"destination"`
	Kind        string    `db:"kind" json:"kind"`
	Photo       string    `db:"photo" json:"photo"`
	Message     string    `db:"message" json:"message"`
	PublishedAt time.Time `db:"published_at" json:"publishedAt"`
	Active      bool      `db:"active" json:"active"`
}

func (s *Storage) UpsertTestimonial(ctx context.Context, t *Testimonial) error {
	query := `
        INSERT INTO testimonials (client_name, destination, kind, photo, message, active)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (client_name, destination) DO UPDATE SET
            kind = EXCLUDED.kind,
            photo = EXCLUDED.photo,
            message = EXCLUDED.message,
            active = EXCLUDED.active
        RETURNING id, published_at`
	return s.db.QueryRowContext(ctx, query,
		t.ClientName, t.Destination, t.Kind, t.Photo, t.Message, t.Active).Scan(&t.ID, &t.PublishedAt)
}

func (s *Storage) ListTestimonials(ctx context.Context, limit int) ([]Testimonial, error) {
	testimonials := []Testimonial{}
	query := `SELECT * FROM testimonials WHERE active ORDER BY published_at DESC LIMIT $1`
	err := s.db.SelectContext(ctx, &testimonials, query, limit)
	return testimonials, err
}

// FAQ entry
type FAQ struct {
	ID       int    `db:"id" json:"id"`
	Question string `db:"question" json:"question"`
	Answer   string `db:"answer" json:"answer"`
	Position int    `db:"position" json:"position"`
	Active   bool   `db:"active" json:"active"`
}

func (s *Storage) UpsertFAQ(ctx context.Context, f *FAQ) error {
	query := `
        INSERT INTO faqs (question, answer, position, active)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (question) DO UPDATE SET
            answer = EXCLUDED.answer, position = EXCLUDED.position, active = EXCLUDED.active
        RETURNING id`
	return s.db.QueryRowContext(ctx, query, f.Question, f.Answer, f.Position, f.Active).Scan(&f.ID)
}

func (s *Storage) ListFAQs(ctx context.Context) ([]FAQ, error) {
	faqs := []FAQ{}
	err := s.db.SelectContext(ctx, &faqs, `SELECT * FROM faqs WHERE active ORDER BY position, id`)
	return faqs, err
}

// TravelService (service card of the home page)
type TravelService struct {
	ID          int    `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Slug        string `db:"slug" json:"slug"`
	Icon        string `db:"icon" json:"icon"`
	BannerImage string `db:"banner_image" json:"bannerImage"`
	Summary     string `db:"summary" json:"summary"`
	Content     string `db:"content" json:"content"`
	Position    int    `db:"position" json:"position"`
}

func (s *Storage) UpsertService(ctx context.Context, ts *TravelService) error {
	query := `
        INSERT INTO travel_services (title, slug, icon, banner_image, summary, content, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (slug) DO UPDATE SET
            title = EXCLUDED.title,
            icon = EXCLUDED.icon,
            banner_image = EXCLUDED.banner_image,
            summary = EXCLUDED.summary,
            content = EXCLUDED.content,
            position = EXCLUDED.position
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		ts.Title, ts.Slug, ts.Icon, ts.BannerImage, ts.Summary, ts.Content, ts.Position).Scan(&ts.ID)
}

func (s *Storage) ListServices(ctx context.Context) ([]TravelService, error) {
	services := []TravelService{}
	err := s.db.SelectContext(ctx, &services, `SELECT * FROM travel_services ORDER BY position, id`)
	return services, err
}

func (s *Storage) GetServiceBySlug(ctx context.Context, slug string) (*TravelService, error) {
	ts := &TravelService{}
	if err := s.db.GetContext(ctx, ts, `SELECT * FROM travel_services WHERE slug=$1`, slug); err != nil {
		return nil, translate(err)
	}
	return ts, nil
}

// Scholarship (study grant with an application deadline)
type Scholarship struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Country     string    `db:"country" json:"country"`
	Level       string    `db:"level" json:"level"`
	Coverage    string    `db:"coverage" json:"coverage"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	Image       string    `db:"image" json:"image"`
	Content     string    `db:"content" json:"content"`
	PublishedAt time.Time `db:"published_at" json:"publishedAt"`
	Active      bool      `db:"active" json:"active"`
}

func (s *Storage) UpsertScholarship(ctx context.Context, sc *Scholarship) error {
	query := `
        INSERT INTO scholarships (title, slug, country, level, coverage, deadline, image, content, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (slug) DO UPDATE SET
            title = EXCLUDED.title,
            country = EXCLUDED.country,
            level = EXCLUDED.level,
            coverage = EXCLUDED.coverage,
            deadline = EXCLUDED.deadline,
            image = EXCLUDED.image,
            content = EXCLUDED.content,
            active = EXCLUDED.active
        RETURNING id, published_at`
	return s.db.QueryRowContext(ctx, query,
		sc.Title, sc.Slug, sc.Country, sc.Level, sc.Coverage, sc.Deadline, sc.Image, sc.Content, sc.Active).
		Scan(&sc.ID, &sc.PublishedAt)
}

// ListOpenScholarships returns active scholarships whose deadline is not
// before today, closest deadline first.
func (s *Storage) ListOpenScholarships(ctx context.Context, today time.Time) ([]Scholarship, error) {
	scholarships := []Scholarship{}
	query := `SELECT * FROM scholarships WHERE active AND deadline >= $1 ORDER BY deadline`
	err := s.db.SelectContext(ctx, &scholarships, query, today)
	return scholarships, err
}

func (s *Storage) GetScholarshipBySlug(ctx context.Context, slug string) (*Scholarship, error) {
	sc := &Scholarship{}
	if err := s.db.GetContext(ctx, sc, `SELECT * FROM scholarships WHERE slug=$1`, slug); err != nil {
		return nil, translate(err)
	}
	return sc, nil
}

// Simulation (lead captured by the eligibility simulator)
type Simulation struct {
	ID                 int       `db:"id" json:"id"`
	FullName           string    `db:"full_name" json:"fullName"`
	Phone              string    `db:"phone" json:"phone"`
	Age                int       `db:"age" json:"age"`
	StudyLevel         string    `db:"study_level" json:"studyLevel"`
	Destination        string    `db:"destination" json:"destination"`
	FinancialSituation string    `db:"financial_situation" json:"financialSituation"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
}

func (s *Storage) CreateSimulation(ctx context.Context, sim *Simulation) error {
	query := `
        INSERT INTO simulations (full_name, phone, age, study_level, destination, financial_situation)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		sim.FullName, sim.Phone, sim.Age, sim.StudyLevel, sim.Destination, sim.FinancialSituation).
		Scan(&sim.ID, &sim.CreatedAt)
}
