package domain

import (
	"time"
)

// WatchlistEntry represents a ticker symbol the user is tracking
type WatchlistEntry struct {
	Symbol     string    `gorm:"primaryKey" json:"symbol"`
	Name       string    `json:"name"`
	IsFavorite bool      `json:"is_favorite" gorm:"index"` // User favorite status
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
