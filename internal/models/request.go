package models

import "time"

// Request is a posted need for a ride. It is Open while AcceptedByUserID is
// nil and Accepted once another user takes it on; unaccepting returns it to
// Open. AcceptedByUserID never equals RequesterUserID.
type Request struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RequesterUserID  uint      `gorm:"not null;index" json:"requester_user_id"`
	Name             string    `gorm:"not null" json:"name"`
	Lat              float64   `gorm:"not null" json:"lat"`
	Lng              float64   `gorm:"not null" json:"lng"`
	Address          string    `json:"address"`
	ArrivalAt        time.Time `gorm:"not null;index" json:"arrival_at"`
	Notes            string    `json:"notes"`
	Wants            string    `json:"wants"`
	AcceptedByUserID *uint     `json:"accepted_by_user_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (r *Request) Open() bool {
	return r.AcceptedByUserID == nil
}
