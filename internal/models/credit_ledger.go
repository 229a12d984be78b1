package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

type LedgerEntryType string

const (
	LedgerTypePurchase        LedgerEntryType = "purchase"
	LedgerTypeConsumption     LedgerEntryType = "consumption"
	LedgerTypeRefund          LedgerEntryType = "refund"
	LedgerTypeAdminAdjustment LedgerEntryType = "admin_adjustment"
)

// CreditLedgerEntry is an immutable record of a single balance change.
// Entries are never updated or deleted; for a given user the entries
// ordered by time form a running sum equal to each BalanceAfter snapshot.
type CreditLedgerEntry struct {
	ID            uint            `gorm:"primarykey"`
	CreatedAt     time.Time       `gorm:"precision:3"` // Millisecond precision
	UserID        uint            `gorm:"index;not null"`
	Amount        int64           `gorm:"not null"` // signed credits
	BalanceBefore int64           `gorm:"not null"`
	BalanceAfter  int64           `gorm:"not null"`
	Type          LedgerEntryType `gorm:"type:varchar(50);index;not null"`
	Reason        string          `gorm:"type:text"`
	Operator      string          `gorm:"type:varchar(100)"` // Username or 'system'
	OperatorID    uint            `gorm:"index;default:0"`   // 0 for system, otherwise UserID
	ReferenceType string          `gorm:"type:varchar(50)"`  // e.g. 'execution', 'order'
	ReferenceID   string          `gorm:"type:varchar(64);index"`
	Hash          string          `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// TableName overrides the table name
func (CreditLedgerEntry) TableName() string {
	return "credit_ledger_entries"
}

// GenerateHash generates a tamper-proof hash for the ledger entry
func (e *CreditLedgerEntry) GenerateHash(secret string) string {
	data := fmt.Sprintf("%d|%d|%d|%d|%d|%s|%s|%s|%s|%d",
		e.UserID, e.CreatedAt.UnixNano(), e.Amount, e.BalanceBefore, e.BalanceAfter,
		e.Reason, e.Operator, e.Type, e.ReferenceID, e.OperatorID)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
