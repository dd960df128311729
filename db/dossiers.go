package db

import (
	"context"
	"time"

	"assistancevoyage/models"

	"github.com/jmoiron/sqlx"
)

// Dossier (a client's case for one travel category)
type Dossier struct {
	ID                 int                  `db:"id" json:"id"`
	ClientID           int                  `db:"client_id" json:"clientId"`
	CategoryID         *int                 `db:"category_id" json:"categoryId"`
	CreatedAt          time.Time            `db:"created_at" json:"createdAt"`
	Status             models.DossierStatus `db:"status" json:"status"`
	WizardStep         int                  `db:"wizard_step" json:"wizardStep"`
	OriginCity         string               `db:"origin_city" json:"originCity"`
	DestinationCountry string               `db:"destination_country" json:"destinationCountry"`
	PlannedDate        *time.Time           `db:"planned_date" json:"plannedDate"`
	HasTraveled        bool                 `db:"has_traveled" json:"hasTraveled"`
	Motive             string               `db:"motive" json:"motive"`
	InstitutionID      *int                 `db:"institution_id" json:"institutionId"`
	Completion         int                  `db:"completion" json:"completion"`
	Paid               bool                 `db:"paid" json:"paid"`
	OfferID            *int                 `db:"offer_id" json:"offerId"`
	PaidAt             *time.Time           `db:"paid_at" json:"paidAt"`
	PaymentReference   string               `db:"payment_reference" json:"paymentReference"`
	Credits            int                  `db:"credits" json:"credits"`
}

func (s *Storage) CreateDossier(ctx context.Context, d *Dossier) error {
	query := `
        INSERT INTO dossiers (client_id, category_id, status, wizard_step)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query, d.ClientID, d.CategoryID, d.Status, d.WizardStep).
		Scan(&d.ID, &d.CreatedAt)
}

// GetOrCreateDossier returns the client's oldest dossier for the category,
// creating a draft at step 1 when there is none.
func (s *Storage) GetOrCreateDossier(ctx context.Context, clientID, categoryID int) (*Dossier, bool, error) {
	d := &Dossier{}
	query := `
        SELECT * FROM dossiers
        WHERE client_id = $1 AND category_id = $2
        ORDER BY id
        LIMIT 1`
	err := s.db.GetContext(ctx, d, query, clientID, categoryID)
	if err == nil {
		return d, false, nil
	}
	if err = translate(err); err != ErrNotFound {
		return nil, false, err
	}

	d = &Dossier{
		ClientID:   clientID,
		CategoryID: &categoryID,
		Status:     models.StatusDraft,
		WizardStep: 1,
	}
	if err := s.CreateDossier(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// GetClientDossier loads a dossier owned by the client.
func (s *Storage) GetClientDossier(ctx context.Context, id, clientID int) (*Dossier, error) {
	d := &Dossier{}
	query := `SELECT * FROM dossiers WHERE id=$1 AND client_id=$2`
	if err := s.db.GetContext(ctx, d, query, id, clientID); err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func (s *Storage) ListClientDossiers(ctx context.Context, clientID int) ([]Dossier, error) {
	dossiers := []Dossier{}
	query := `SELECT * FROM dossiers WHERE client_id=$1 ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &dossiers, query, clientID)
	return dossiers, err
}

const updateWizardQuery = `
        UPDATE dossiers
        SET origin_city=$1, destination_country=$2, planned_date=$3,
            has_traveled=$4, motive=$5, institution_id=$6, wizard_step=$7
        WHERE id=$8`

// UpdateDossierWizard persists every wizard field together with the step.
func (s *Storage) UpdateDossierWizard(ctx context.Context, d *Dossier) error {
	_, err := s.db.ExecContext(ctx, updateWizardQuery,
		d.OriginCity, d.DestinationCountry, d.PlannedDate,
		d.HasTraveled, d.Motive, d.InstitutionID, d.WizardStep, d.ID)
	return err
}

// UpdateDossierWizardWithDocuments saves the wizard fields and makes sure a
// submitted document row exists for each requirement, in one transaction.
// It returns how many rows were created.
func (s *Storage) UpdateDossierWizardWithDocuments(ctx context.Context, d *Dossier, requirementIDs []int) (int, error) {
	created := 0
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, updateWizardQuery,
			d.OriginCity, d.DestinationCountry, d.PlannedDate,
			d.HasTraveled, d.Motive, d.InstitutionID, d.WizardStep, d.ID)
		if err != nil {
			return err
		}
		for _, reqID := range requirementIDs {
			res, err := tx.ExecContext(ctx, `
                INSERT INTO submitted_documents (dossier_id, requirement_id, review_state)
                VALUES ($1, $2, $3)
                ON CONFLICT (dossier_id, requirement_id) DO NOTHING`,
				d.ID, reqID, models.ReviewPending)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			created += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (s *Storage) UpdateDossierProgress(ctx context.Context, id, completion int, status models.DossierStatus) error {
	query := `UPDATE dossiers SET completion=$1, status=$2 WHERE id=$3`
	_, err := s.db.ExecContext(ctx, query, completion, status, id)
	return err
}

func (s *Storage) UpdateDossierPayment(ctx context.Context, d *Dossier) error {
	query := `
        UPDATE dossiers
        SET paid=$1, offer_id=$2, paid_at=$3, payment_reference=$4, credits=$5
        WHERE id=$6`
	_, err := s.db.ExecContext(ctx, query,
		d.Paid, d.OfferID, d.PaidAt, d.PaymentReference, d.Credits, d.ID)
	return err
}
