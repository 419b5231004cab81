package models

import "time"

type MemberStatus string

const (
	StatusWaitlisted MemberStatus = "waitlisted"
	StatusAccepted   MemberStatus = "accepted"
)

// Offering is a posted ride with finite seat capacity. TotalSeats is fixed at
// creation; AvailableSeats moves only under the offering row lock, so
// AvailableSeats + count(accepted members) == TotalSeats holds at all times.
type Offering struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerUserID uint      `gorm:"not null;index" json:"owner_user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Lat         float64   `gorm:"not null" json:"lat"`
	Lng         float64   `gorm:"not null" json:"lng"`
	Address     string    `json:"address"`
	ArrivalAt   time.Time `gorm:"not null;index" json:"arrival_at"`
	Notes       string    `json:"notes"`
	VehicleID   *uint     `json:"vehicle_id,omitempty"`

	TotalSeats     int `gorm:"not null" json:"total_seats"`
	AvailableSeats int `gorm:"not null" json:"available_seats"`

	ReminderSent bool `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Members []OfferingMember `gorm:"foreignKey:OfferingID" json:"members,omitempty"`
}

// OfferingMember is one user's participation in an offering: first a
// waitlist entry (Position set, FIFO), then an accepted seat (Position nil).
// A user has at most one row per offering, enforced by a unique index.
type OfferingMember struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	OfferingID uint         `gorm:"not null;index:idx_offering_user,unique" json:"offering_id"`
	UserID     uint         `gorm:"not null;index:idx_offering_user,unique" json:"user_id"`
	Status     MemberStatus `gorm:"type:varchar(20);not null;default:'waitlisted'" json:"status"`
	Position   *int         `json:"position,omitempty"`

	// QuickMessage is what the rider wrote when joining. It survives
	// acceptance and is deleted with the row.
	QuickMessage string `json:"quick_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
