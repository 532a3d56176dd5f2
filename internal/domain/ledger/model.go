// Package ledger defines the canonical transaction record, the schema
// validator every ingestion path passes through, and the persistence
// collaborator that stores admitted records.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a transaction as money in or money out. The amount itself is
// always stored as an absolute value; Kind carries the sign.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// DateLayout is the fixed calendar representation for admitted records.
const DateLayout = "2006-01-02"

// Field limits enforced at admission.
const (
	MaxDescriptionLen = 200
	MaxCategoryLen    = 100
)

// Transaction is the canonical unit stored in the ledger. Once admitted a
// record is immutable except for deletion by ID.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // absolute value, sign in Kind
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category,omitempty"`
	Date        time.Time       `json:"date"`
}

// DateString returns the record date in the fixed YYYY-MM-DD representation.
func (t Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// Candidate is an extraction-time transaction that has not passed validation
// yet. Candidates live only for the review session and are never persisted.
type Candidate struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category,omitempty"`
	Date        string          `json:"date"` // YYYY-MM-DD, may be invalid until validated
	Selected    bool            `json:"selected"`
}

// Input is the raw, untyped shape handed to Normalize. Manual entry, tabular
// rows and confirmed candidates all reduce to this before admission, so the
// schema rules cannot drift between ingestion paths.
type Input struct {
	Description string
	Amount      string
	Kind        string
	Category    string
	Date        string
}

// Input converts a reviewed candidate back to the raw shape for validation.
func (c Candidate) Input() Input {
	return Input{
		Description: c.Description,
		Amount:      c.Amount.String(),
		Kind:        string(c.Kind),
		Category:    c.Category,
		Date:        c.Date,
	}
}
