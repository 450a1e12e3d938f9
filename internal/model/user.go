package model

import "time"

// DefaultStartingPoints is granted to every newly registered member.
const DefaultStartingPoints = 1500

// User represents a club member or administrator.
//
// Points is the confirmed balance; AvailablePoints is Points minus any
// amount currently held by pending redemption requests. The pair always
// satisfies 0 <= AvailablePoints <= Points.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"size:255;not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Points          int       `json:"points" gorm:"not null;default:0"`
	AvailablePoints int       `json:"available_points" gorm:"not null;default:0"`
	IsAdmin         bool      `json:"is_admin" gorm:"default:false;index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PendingPoints is the amount currently held by pending requests.
// It is derived, never stored.
func (u *User) PendingPoints() int {
	return u.Points - u.AvailablePoints
}
