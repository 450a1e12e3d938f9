package model

import "time"

// Product represents a redeemable catalog item priced in PP.
// Deactivated products stay visible to admins and in historical
// requests but are excluded from the purchasable list.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	Price       int       `json:"price" gorm:"not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Link        string    `json:"link,omitempty" gorm:"size:2048"`
	IsActive    bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
