package model

import "time"

// PointType classifies a ledger movement.
type PointType string

const (
	PointTypeDeposit  PointType = "deposit"
	PointTypeWithdraw PointType = "withdraw"
	// PointTypePending is reserved for future use; no flow produces it.
	PointTypePending PointType = "pending"
)

// PointHistory is one immutable ledger line. Entries are append-only:
// for every user, initial balance + sum(deposits) - sum(withdrawals)
// equals the current confirmed Points.
type PointHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Type      PointType `json:"type" gorm:"type:varchar(20);not null;index"`
	Amount    int       `json:"amount" gorm:"not null"`
	Reason    string    `json:"reason" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}
