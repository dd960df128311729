package dossier

import (
	"fmt"
	"strings"
	"time"

	"assistancevoyage/db"

	"github.com/google/uuid"
)

// PaymentReference builds the reference stamped on a confirmed payment:
// PAY-<yyyymmdd>-<dossier id>-<suffix>.
func PaymentReference(dossierID int, at time.Time, suffix string) string {
	return fmt.Sprintf("PAY-%s-%d-%s", at.Format("20060102"), dossierID, strings.ToUpper(suffix))
}

// NewPaymentSuffix returns 8 random hex characters.
func NewPaymentSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// ConfirmPayment stamps the dossier as paid with the offer. Credits are set
// to the offer's credits, not added.
func ConfirmPayment(d *db.Dossier, offer *db.Offer, at time.Time, suffix string) {
	offerID := offer.ID
	paidAt := at
	d.Paid = true
	d.OfferID = &offerID
	d.PaidAt = &paidAt
	d.Credits = offer.Credits
	d.PaymentReference = PaymentReference(d.ID, at, suffix)
}
