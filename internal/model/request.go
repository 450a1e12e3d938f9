package model

import "time"

// RequestStatus represents the state of a redemption request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Request represents a member's redemption request for a catalog product.
//
// Amount is frozen at creation time (price x quantity) even if the product
// price later changes. PendingAmount equals Amount while the request is
// pending and is reset to 0 on the terminal transition.
type Request struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"user_id" gorm:"not null;index"`
	ProductID     uint          `json:"product_id" gorm:"not null;index"`
	Quantity      int           `json:"quantity" gorm:"not null"`
	Amount        int           `json:"amount" gorm:"not null"`
	PendingAmount int           `json:"pending_amount" gorm:"not null;default:0"`
	Status        RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	RejectReason  string        `json:"reject_reason,omitempty" gorm:"size:500"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Relations (product name/link render via live join, not a snapshot)
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}
