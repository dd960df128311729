package db

import "context"

// Category (travel category: student, tourism, work, medical)
type Category struct {
	ID    int    `db:"id" json:"id"`
	Slug  string `db:"slug" json:"slug"`
	Name  string `db:"name" json:"name"`
	Title string `db:"title" json:"title"`
}

func (s *Storage) UpsertCategory(ctx context.Context, c *Category) error {
	query := `
        INSERT INTO categories (slug, name, title)
        VALUES ($1, $2, $3)
        ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, title = EXCLUDED.title
        RETURNING id`
	return s.db.QueryRowContext(ctx, query, c.Slug, c.Name, c.Title).Scan(&c.ID)
}

func (s *Storage) GetCategory(ctx context.Context, id int) (*Category, error) {
	c := &Category{}
	err := s.db.GetContext(ctx, c, `SELECT * FROM categories WHERE id=$1`, id)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	err := s.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY id`)
	return categories, err
}

// Institution (university or other host chosen in wizard step 3)
type Institution struct {
	ID      int    `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Country string `db:"country" json:"country"`
}

func (s *Storage) UpsertInstitution(ctx context.Context, i *Institution) error {
	query := `
        INSERT INTO institutions (name, country)
        VALUES ($1, $2)
        ON CONFLICT (name, country) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`
	return s.db.QueryRowContext(ctx, query, i.Name, i.Country).Scan(&i.ID)
}

func (s *Storage) GetInstitution(ctx context.Context, id int) (*Institution, error) {
	i := &Institution{}
	err := s.db.GetContext(ctx, i, `SELECT * FROM institutions WHERE id=$1`, id)
	if err != nil {
		return nil, translate(err)
	}
	return i, nil
}

func (s *Storage) ListInstitutionsByCountry(ctx context.Context, country string) ([]Institution, error) {
	institutions := []Institution{}
	query := `SELECT * FROM institutions WHERE lower(country) = lower($1) ORDER BY name`
	err := s.db.SelectContext(ctx, &institutions, query, country)
	return institutions, err
}

// Requirement (document kind needed to complete a case)
type Requirement struct {
	ID            int    `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	CategoryID    *int   `db:"category_id" json:"categoryId,omitempty"`
	InstitutionID *int   `db:"institution_id" json:"institutionId,omitempty"`
	Mandatory     bool   `db:"mandatory" json:"mandatory"`
	Description   string `db:"description" json:"description"`
}

func (s *Storage) UpsertRequirement(ctx context.Context, r *Requirement) error {
	query := `
        INSERT INTO document_requirements (name, category_id, institution_id, mandatory, description)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (name, category_id, institution_id)
        DO UPDATE SET mandatory = EXCLUDED.mandatory, description = EXCLUDED.description
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		r.Name, r.CategoryID, r.InstitutionID, r.Mandatory, r.Description).Scan(&r.ID)
}

func (s *Storage) GetRequirement(ctx context.Context, id int) (*Requirement, error) {
	r := &Requirement{}
	err := s.db.GetContext(ctx, r, `SELECT * FROM document_requirements WHERE id=$1`, id)
	if err != nil {
		return nil, translate(err)
	}
	return r, nil
}

// ListRequirements returns the requirements owned by the category and, when
// institutionID is set, by the institution. Rows are unique by id.
func (s *Storage) ListRequirements(ctx context.Context, categoryID int, institutionID *int) ([]Requirement, error) {
	requirements := []Requirement{}
	query := `
        SELECT * FROM document_requirements
        WHERE category_id = $1 OR ($2::int IS NOT NULL AND institution_id = $2)
        ORDER BY id`
	err := s.db.SelectContext(ctx, &requirements, query, categoryID, institutionID)
	return requirements, err
}

// Offer (priced package of verification credits)
type Offer struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	PriceCents  int    `db:"price_cents" json:"priceCents"`
	Credits     int    `db:"credits" json:"credits"`
	Active      bool   `db:"active" json:"active"`
}

func (s *Storage) UpsertOffer(ctx context.Context, o *Offer) error {
	query := `
        INSERT INTO offers (name, description, price_cents, credits, active)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (name) DO UPDATE SET
            description = EXCLUDED.description,
            price_cents = EXCLUDED.price_cents,
            credits = EXCLUDED.credits,
            active = EXCLUDED.active
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		o.Name, o.Description, o.PriceCents, o.Credits, o.Active).Scan(&o.ID)
}

func (s *Storage) GetOffer(ctx context.Context, id int) (*Offer, error) {
	o := &Offer{}
	err := s.db.GetContext(ctx, o, `SELECT * FROM offers WHERE id=$1`, id)
	if err != nil {
		return nil, translate(err)
	}
	return o, nil
}

func (s *Storage) ListOffers(ctx context.Context) ([]Offer, error) {
	offers := []Offer{}
	err := s.db.SelectContext(ctx, &offers, `SELECT * FROM offers WHERE active ORDER BY price_cents`)
	return offers, err
}
