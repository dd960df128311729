// Package catalog describes the reference data of the agency in a YAML file
// and loads it into storage.
package catalog

import (
	"context"
	"fmt"
	"os"
	"time"

	"assistancevoyage/db"
	"assistancevoyage/models"

	"gopkg.in/yaml.v3"
)

type Requirement struct {
	Name        string `yaml:"name"`
	Mandatory   bool   `yaml:"mandatory"`
	Description string `yaml:"description"`
}

type Category struct {
	Slug         string        `yaml:"slug"`
	Name         string        `yaml:"name"`
	Title        string        `yaml:"title"`
	Requirements []Requirement `yaml:"requirements"`
}

type Institution struct {
	Name         string        `yaml:"name"`
	Country      string        `yaml:"country"`
	Requirements []Requirement `yaml:"requirements"`
}

type Offer struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PriceCents  int    `yaml:"price_cents"`
	Credits     int    `yaml:"credits"`
	Active      *bool  `yaml:"active"`
}

type GuideDocument struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

type Guide struct {
	Slug        string          `yaml:"slug"`
	Title       string          `yaml:"title"`
	Destination string          `yaml:"destination"`
	Category    string          `yaml:"category"`
	CoverImage  string          `yaml:"cover_image"`
	Content     string          `yaml:"content"`
	Featured    bool            `yaml:"featured"`
	Active      *bool           `yaml:"active"`
	Documents   []GuideDocument `yaml:"documents"`
}

type Scholarship struct {
	Slug     string `yaml:"slug"`
	Title    string `yaml:"title"`
	Country  string `yaml:"country"`
	Level    string `yaml:"level"`
	Coverage string `yaml:"coverage"`
	Deadline string `yaml:"deadline"`
	Image    string `yaml:"image"`
	Content  string `yaml:"content"`
	Active   *bool  `yaml:"active"`
}

type Testimonial struct {
	ClientName  string `yaml:"client_name"`
	Destination string `yaml:"destination"`
	Kind        string `yaml:"kind"`
	Photo       string `yaml:"photo"`
	Message     string `yaml:"message"`
	Active      *bool  `yaml:"active"`
}

type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Active   *bool  `yaml:"active"`
}

type Service struct {
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	Icon        string `yaml:"icon"`
	BannerImage string `yaml:"banner_image"`
	Summary     string `yaml:"summary"`
	Content     string `yaml:"content"`
}

type Catalog struct {
	Categories   []Category    `yaml:"categories"`
	Institutions []Institution `yaml:"institutions"`
	Offers       []Offer       `yaml:"offers"`
	Guides       []Guide       `yaml:"guides"`
	Scholarships []Scholarship `yaml:"scholarships"`
	Testimonials []Testimonial `yaml:"testimonials"`
	FAQs         []FAQ         `yaml:"faqs"`
	Services     []Service     `yaml:"services"`
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks references and formats that the database would reject.
func (c *Catalog) Validate() error {
	slugs := map[string]bool{}
	for _, cat := range c.Categories {
		if cat.Slug == "" {
			return fmt.Errorf("category %q has no slug", cat.Title)
		}
		if _, ok := models.CategoryTitles[cat.Name]; !ok {
			return fmt.Errorf("category %s: unknown name %q", cat.Slug, cat.Name)
		}
		slugs[cat.Slug] = true
	}
	for _, g := range c.Guides {
		if !slugs[g.Category] {
			return fmt.Errorf("guide %s: unknown category %q", g.Slug, g.Category)
		}
	}
	for _, s := range c.Scholarships {
		if _, err := time.Parse("2006-01-02", s.Deadline); err != nil {
			return fmt.Errorf("scholarship %s: invalid deadline %q", s.Slug, s.Deadline)
		}
	}
	return nil
}

// Seeder is the storage the catalog is written to.
type Seeder interface {
	UpsertCategory(ctx context.Context, c *db.Category) error
	UpsertInstitution(ctx context.Context, i *db.Institution) error
	UpsertRequirement(ctx context.Context, r *db.Requirement) error
	UpsertOffer(ctx context.Context, o *db.Offer) error
	UpsertGuide(ctx context.Context, g *db.Guide) error
	UpsertGuideDocument(ctx context.Context, d *db.GuideDocument) error
	UpsertScholarship(ctx context.Context, s *db.Scholarship) error
	UpsertTestimonial(ctx context.Context, t *db.Testimonial) error
	UpsertFAQ(ctx context.Context, f *db.FAQ) error
	UpsertService(ctx context.Context, s *db.TravelService) error
}

// Stats counts the upserted records per kind.
type Stats map[string]int

// Apply upserts the whole catalog. Running it twice leaves the same data.
func (c *Catalog) Apply(ctx context.Context, s Seeder) (Stats, error) {
	stats := Stats{}

	categoryIDs := map[string]int{}
	for _, cat := range c.Categories {
		row := &db.Category{Slug: cat.Slug, Name: cat.Name, Title: cat.Title}
		if row.Title == "" {
			row.Title = models.CategoryTitles[cat.Name]
		}
		if err := s.UpsertCategory(ctx, row); err != nil {
			return stats, fmt.Errorf("category %s: %w", cat.Slug, err)
		}
		categoryIDs[cat.Slug] = row.ID
		stats["categories"]++

		categoryID := row.ID
		for _, r := range cat.Requirements {
			req := &db.Requirement{Name: r.Name, CategoryID: &categoryID, Mandatory: r.Mandatory, Description: r.Description}
			if err := s.UpsertRequirement(ctx, req); err != nil {
				return stats, fmt.Errorf("requirement %s: %w", r.Name, err)
			}
			stats["requirements"]++
		}
	}

	for _, inst := range c.Institutions {
		row := &db.Institution{Name: inst.Name, Country: inst.Country}
		if err := s.UpsertInstitution(ctx, row); err != nil {
			return stats, fmt.Errorf("institution %s: %w", inst.Name, err)
		}
		stats["institutions"]++

		institutionID := row.ID
		for _, r := range inst.Requirements {
			req := &db.Requirement{Name: r.Name, InstitutionID: &institutionID, Mandatory: r.Mandatory, Description: r.Description}
			if err := s.UpsertRequirement(ctx, req); err != nil {
				return stats, fmt.Errorf("requirement %s: %w", r.Name, err)
			}
			stats["requirements"]++
		}
	}

	for _, o := range c.Offers {
		row := &db.Offer{Name: o.Name, Description: o.Description, PriceCents: o.PriceCents, Credits: o.Credits, Active: enabled(o.Active)}
		if err := s.UpsertOffer(ctx, row); err != nil {
			return stats, fmt.Errorf("offer %s: %w", o.Name, err)
		}
		stats["offers"]++
	}

	for _, g := range c.Guides {
		row := &db.Guide{
			Slug:        g.Slug,
			Title:       g.Title,
			Destination: g.Destination,
			CategoryID:  categoryIDs[g.Category],
			CoverImage:  g.CoverImage,
			Content:     g.Content,
			Featured:    g.Featured,
			Active:      enabled(g.Active),
		}
		if err := s.UpsertGuide(ctx, row); err != nil {
			return stats, fmt.Errorf("guide %s: %w", g.Slug, err)
		}
		stats["guides"]++

		for _, d := range g.Documents {
			if err := s.UpsertGuideDocument(ctx, &db.GuideDocument{GuideID: row.ID, Name: d.Name, File: d.File}); err != nil {
				return stats, fmt.Errorf("guide document %s: %w", d.Name, err)
			}
			stats["guide_documents"]++
		}
	}

	for _, sc := range c.Scholarships {
		deadline, err := time.Parse("2006-01-02", sc.Deadline)
		if err != nil {
			return stats, fmt.Errorf("scholarship %s: %w", sc.Slug, err)
		}
		row := &db.Scholarship{
			Slug:     sc.Slug,
			Title:    sc.Title,
			Country:  sc.Country,
			Level:    sc.Level,
			Coverage: orDefault(sc.Coverage, "totale"),
			Deadline: deadline,
			Image:    sc.Image,
			Content:  sc.Content,
			Active:   enabled(sc.Active),
		}
		if err := s.UpsertScholarship(ctx, row); err != nil {
			return stats, fmt.Errorf("scholarship %s: %w", sc.Slug, err)
		}
		stats["scholarships"]++
	}

	for _, t := range c.Testimonials {
		row := &db.Testimonial{ClientName: t.ClientName, Destination: t.Destination, Kind: orDefault(t.Kind, "visa"), Photo: t.Photo, Message: t.Message, Active: enabled(t.Active)}
		if err := s.UpsertTestimonial(ctx, row); err != nil {
			return stats, fmt.Errorf("testimonial %s: %w", t.ClientName, err)
		}
		stats["testimonials"]++
	}

	for i, f := range c.FAQs {
		row := &db.FAQ{Question: f.Question, Answer: f.Answer, Position: i, Active: enabled(f.Active)}
		if err := s.UpsertFAQ(ctx, row); err != nil {
			return stats, fmt.Errorf("faq %d: %w", i, err)
		}
		stats["faqs"]++
	}

	for i, sv := range c.Services {
		row := &db.TravelService{Slug: sv.Slug, Title: sv.Title, Icon: sv.Icon, BannerImage: sv.BannerImage, Summary: sv.Summary, Content: sv.Content, Position: i}
		if err := s.UpsertService(ctx, row); err != nil {
			return stats, fmt.Errorf("service %s: %w", sv.Slug, err)
		}
		stats["services"]++
	}

	return stats, nil
}

// enabled defaults an unset active flag to true.
func enabled(b *bool) bool {
	return b == nil || *b
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
