package ledger

import (
	"time"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

// LedgerListItem is one ledger entry in an admin listing.
type LedgerListItem struct {
	ID            uint                   `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	UserID        uint                   `json:"user_id"`
	Amount        int64                  `json:"amount"`
	BalanceBefore int64                  `json:"balance_before"`
	BalanceAfter  int64                  `json:"balance_after"`
	Type          models.LedgerEntryType `json:"type"`
	Reason        string                 `json:"reason"`
	Operator      string                 `json:"operator"`
	ReferenceType string                 `json:"reference_type,omitempty"`
	ReferenceID   string                 `json:"reference_id,omitempty"`
	Hash          string                 `json:"hash"`
}

// AdjustInput is an admin balance adjustment request. Positive amounts
// credit the user, negative amounts debit.
type AdjustInput struct {
	UserID uint   `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required,min=3"`
}
