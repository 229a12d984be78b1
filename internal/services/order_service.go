package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/database"
	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order is not pending")
	ErrInvalidOrderInput = errors.New("invalid order input")
)

// CreateOrder opens a pending credit purchase for a user.
func CreateOrder(userID uint, credits int64, amountUSD float64) (*models.CreditOrder, error) {
	if credits <= 0 || amountUSD < 0 {
		return nil, ErrInvalidOrderInput
	}

	order := &models.CreditOrder{
		ID:        uuid.New().String(),
		UserID:    userID,
		Credits:   credits,
		AmountUSD: amountUSD,
		Status:    models.OrderStatusPending,
		OrderType: models.OrderTypePayment,
	}
	if err := database.DB.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateManualOrder opens an admin-initiated grant. It is still a
// pending order so the credit only lands through CompleteOrder.
func CreateManualOrder(userID uint, credits int64, remark string) (*models.CreditOrder, error) {
	if credits <= 0 {
		return nil, ErrInvalidOrderInput
	}

	order := &models.CreditOrder{
		ID:        uuid.New().String(),
		UserID:    userID,
		Credits:   credits,
		Status:    models.OrderStatusPending,
		OrderType: models.OrderTypeManual,
		Remark:    remark,
	}
	if err := database.DB.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CompleteOrder marks a pending order paid and credits the buyer inside
// one transaction. The row lock plus the status check make completion
// idempotent-hostile: a second completion of the same order fails with
// ErrOrderNotPending instead of crediting twice.
func CompleteOrder(orderID string, operator string, operatorID uint) (*models.CreditOrder, error) {
	var order models.CreditOrder

	// Peek at the order owner first so the user lock is acquired before
	// the transaction opens, matching the debit path's lock ordering.
	if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	mu := lockUser(order.UserID)
	mu.Lock()
	defer mu.Unlock()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}

		now := time.Now()
		order.Status = models.OrderStatusPaid
		order.CompletedAt = &now
		order.CompletedBy = operatorID
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		reason := fmt.Sprintf("credit purchase order %s", order.ID)
		if order.OrderType == models.OrderTypeManual {
			reason = fmt.Sprintf("manual credit grant %s", order.ID)
		}

		_, err := applyLedgerChange(tx, LedgerOp{
			UserID:        order.UserID,
			Amount:        order.Credits,
			Type:          models.LedgerTypePurchase,
			Reason:        reason,
			Operator:      operator,
			OperatorID:    operatorID,
			ReferenceType: "order",
			ReferenceID:   order.ID,
		}, order.Credits)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder marks a pending order cancelled. Paid orders cannot be
// cancelled; refunds go through the ledger as explicit refund entries.
func CancelOrder(orderID string, operatorID uint) (*models.CreditOrder, error) {
	var order models.CreditOrder

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status != models.OrderStatusPending {
			return ErrOrderNotPending
		}

		now := time.Now()
		order.Status = models.OrderStatusCancelled
		order.CompletedAt = &now
		order.CompletedBy = operatorID
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderFilter defines criteria for listing credit orders
type OrderFilter struct {
	UserID *uint
	Status *string
	Page   int
	Limit  int
}

// FindOrders retrieves a paginated list of credit orders with filtering
func FindOrders(filter OrderFilter) ([]models.CreditOrder, int64, error) {
	var orders []models.CreditOrder
	var total int64

	query := database.DB.Model(&models.CreditOrder{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetOrderByID returns a single order.
func GetOrderByID(orderID string) (*models.CreditOrder, error) {
	var order models.CreditOrder
	if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
