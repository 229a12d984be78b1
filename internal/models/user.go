package models

import "time"

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"not null;default:'user'"`
	// Balance is the user's credit balance. It is only ever changed
	// through the credit ledger, which writes the balance and a
	// matching ledger entry in one transaction.
	Balance int64 `gorm:"not null;default:0"`
	Version int   `gorm:"default:1"`
}
