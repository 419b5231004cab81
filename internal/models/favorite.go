package models

import "time"

type FavoriteType string

const (
	FavoriteOffering FavoriteType = "offering"
	FavoriteRequest  FavoriteType = "request"
)

// Favorite bookmarks an offering or request for a user. The unique index
// makes redundant adds no-ops.
type Favorite struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index:idx_fav,unique" json:"user_id"`
	ItemType  FavoriteType `gorm:"type:varchar(20);not null;index:idx_fav,unique" json:"item_type"`
	ItemID    uint         `gorm:"not null;index:idx_fav,unique" json:"item_id"`
	CreatedAt time.Time    `json:"created_at"`
}
