package models

import "time"

type Vehicle struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerUserID uint      `gorm:"uniqueIndex;not null" json:"owner_user_id"`
	Color       string    `json:"color"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Seats       int       `gorm:"not null" json:"seats"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
