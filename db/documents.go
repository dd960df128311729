package db

import (
	"context"
	"time"

	"assistancevoyage/models"

	"github.com/jmoiron/sqlx"
)

// SubmittedDocument (one row per dossier and requirement)
type SubmittedDocument struct {
	ID            int                `db:"id" json:"id"`
	DossierID     int                `db:"dossier_id" json:"dossierId"`
	RequirementID int                `db:"requirement_id" json:"requirementId"`
	FilePath      *string            `db:"file_path" json:"filePath"`
	ReviewState   models.ReviewState `db:"review_state" json:"reviewState"`
	AdminComment  string             `db:"admin_comment" json:"adminComment"`
	UploadedAt    *time.Time         `db:"uploaded_at" json:"uploadedAt"`
}

// HasFile reports whether the client actually uploaded something for the row.
func (d SubmittedDocument) HasFile() bool {
	return d.FilePath != nil && *d.FilePath != ""
}

func (s *Storage) ListSubmittedDocuments(ctx context.Context, dossierID int) ([]SubmittedDocument, error) {
	docs := []SubmittedDocument{}
	query := `SELECT * FROM submitted_documents WHERE dossier_id=$1 ORDER BY requirement_id`
	err := s.db.SelectContext(ctx, &docs, query, dossierID)
	return docs, err
}

// SaveUpload records a file for the dossier and requirement. The row is
// created on first upload and updated in place afterwards; its review is
// reset to pending. The previously stored path, if any, is returned so the
// caller can remove the old file.
func (s *Storage) SaveUpload(ctx context.Context, dossierID, requirementID int, path string, at time.Time) (*SubmittedDocument, string, error) {
	doc := &SubmittedDocument{}
	previous := ""
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var old *string
		err := tx.GetContext(ctx, &old, `
            SELECT file_path FROM submitted_documents
            WHERE dossier_id=$1 AND requirement_id=$2
            FOR UPDATE`, dossierID, requirementID)
		if err != nil && translate(err) != ErrNotFound {
			return err
		}
		if old != nil {
			previous = *old
		}
		return tx.GetContext(ctx, doc, `
            INSERT INTO submitted_documents
                (dossier_id, requirement_id, file_path, review_state, admin_comment, uploaded_at)
            VALUES ($1, $2, $3, $4, '', $5)
            ON CONFLICT (dossier_id, requirement_id) DO UPDATE SET
                file_path = EXCLUDED.file_path,
                review_state = EXCLUDED.review_state,
                admin_comment = '',
                uploaded_at = EXCLUDED.uploaded_at
            RETURNING *`,
			dossierID, requirementID, path, models.ReviewPending, at)
	})
	if err != nil {
		return nil, "", err
	}
	return doc, previous, nil
}
