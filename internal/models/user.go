package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthUID   string    `gorm:"uniqueIndex;not null" json:"-"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `json:"name"`
	VehicleID *uint     `json:"vehicle_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompletedProfile  bool `gorm:"not null;default:false" json:"completed_profile"`
	AcceptedAgreement bool `gorm:"not null;default:false" json:"accepted_agreement"`

	ContactEntries []ContactEntry `gorm:"foreignKey:UserID" json:"contact_entries,omitempty"`
}

// ContactEntry is one way to reach a user. Position keeps the list in the
// order the user arranged it.
type ContactEntry struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;index" json:"-"`
	Type     string `gorm:"not null" json:"type"`
	Value    string `gorm:"not null" json:"value"`
	Platform string `json:"platform,omitempty"`
	Position int    `gorm:"not null" json:"position"`
}
