package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/config"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// Balance changes for one user must be serialized: the precheck and the
// final debit both read the balance, and two concurrent debits racing on
// the same row could otherwise double-spend. Locks are striped by user
// id; the LLM call itself never runs under a lock.
const userLockStripes = 64

var userLocks [userLockStripes]sync.Mutex

func lockUser(userID uint) *sync.Mutex {
	return &userLocks[userID%userLockStripes]
}

// LedgerOp describes one balance change request.
type LedgerOp struct {
	UserID        uint
	Amount        int64 // positive; sign is decided by Debit/Credit
	Type          models.LedgerEntryType
	Reason        string
	Operator      string
	OperatorID    uint
	ReferenceType string
	ReferenceID   string
	// AllowNegative lets a debit overdraw the balance. Only the
	// execution finalize path sets it: the provider cost has already
	// been incurred and must be charged even if the estimate undershot.
	AllowNegative bool
}

// DebitCredits atomically subtracts op.Amount from the user's balance
// and appends a ledger entry carrying before/after snapshots. Fails
// with ErrInsufficientCredits if the balance would go negative, unless
// op.AllowNegative is set.
func DebitCredits(op LedgerOp) (*models.CreditLedgerEntry, error) {
	if op.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	mu := lockUser(op.UserID)
	mu.Lock()
	defer mu.Unlock()

	var entry *models.CreditLedgerEntry
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = applyLedgerChange(tx, op, -op.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditCredits atomically adds op.Amount to the user's balance, used
// for purchases, refunds and admin adjustments.
func CreditCredits(op LedgerOp) (*models.CreditLedgerEntry, error) {
	if op.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	mu := lockUser(op.UserID)
	mu.Lock()
	defer mu.Unlock()

	var entry *models.CreditLedgerEntry
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = applyLedgerChange(tx, op, op.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// applyLedgerChange performs the balance update and entry insert inside
// the caller's transaction. The caller must hold the user's lock.
func applyLedgerChange(tx *gorm.DB, op LedgerOp, delta int64) (*models.CreditLedgerEntry, error) {
	var user models.User
	if err := tx.First(&user, op.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	balanceBefore := user.Balance
	balanceAfter := balanceBefore + delta
	if balanceAfter < 0 && !op.AllowNegative {
		return nil, ErrInsufficientCredits
	}

	// Optimistic version check backs up the in-process lock: a write
	// from outside this process still cannot slip between read and
	// update.
	currentVersion := user.Version
	result := tx.Model(&user).Where("version = ?", currentVersion).Updates(map[string]interface{}{
		"balance": balanceAfter,
		"version": currentVersion + 1,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrOptimisticLock
	}

	entry := models.CreditLedgerEntry{
		UserID:        op.UserID,
		Amount:        delta,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Type:          op.Type,
		Reason:        op.Reason,
		Operator:      op.Operator,
		OperatorID:    op.OperatorID,
		ReferenceType: op.ReferenceType,
		ReferenceID:   op.ReferenceID,
		CreatedAt:     time.Now(),
	}

	cfg, _ := config.LoadConfig()
	secret := "default-secret"
	if cfg != nil && cfg.JWTSecret != "" {
		secret = cfg.JWTSecret
	}
	entry.Hash = entry.GenerateHash(secret)

	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, fmt.Sprintf("user:%d", op.UserID))
	}

	return &entry, nil
}

// PrecheckBalance verifies under the user lock that at least credits
// are available. Advisory: the final debit re-validates, but a failed
// precheck rejects the execution before any provider call is made.
func PrecheckBalance(userID uint, credits int64) error {
	mu := lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	balance, err := GetBalance(userID)
	if err != nil {
		return err
	}
	if balance < credits {
		return ErrInsufficientCredits
	}
	return nil
}

// GetBalance returns the user's current credit balance.
func GetBalance(userID uint) (int64, error) {
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.Balance, nil
}

// LedgerFilter defines criteria for filtering ledger entries
type LedgerFilter struct {
	UserID    *uint
	Type      *models.LedgerEntryType
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	Limit     int
}

// FindLedgerEntries retrieves a paginated list of ledger entries with filtering
func FindLedgerEntries(filter LedgerFilter) ([]models.CreditLedgerEntry, int64, error) {
	var entries []models.CreditLedgerEntry
	var total int64

	query := database.DB.Model(&models.CreditLedgerEntry{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// GenerateLedgerCSV generates CSV file content for ledger entries
func GenerateLedgerCSV(entries []models.CreditLedgerEntry) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{
		"ID", "Time", "User ID", "Type", "Amount",
		"Balance Before", "Balance After", "Reason",
		"Operator", "Reference", "Hash",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		record := []string{
			fmt.Sprintf("%d", e.ID),
			e.CreatedAt.Format(time.RFC3339Nano),
			fmt.Sprintf("%d", e.UserID),
			string(e.Type),
			fmt.Sprintf("%d", e.Amount),
			fmt.Sprintf("%d", e.BalanceBefore),
			fmt.Sprintf("%d", e.BalanceAfter),
			e.Reason,
			e.Operator,
			fmt.Sprintf("%s:%s", e.ReferenceType, e.ReferenceID),
			e.Hash,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
