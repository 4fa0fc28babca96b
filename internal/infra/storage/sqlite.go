package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stock_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists the user's watchlist. The balance itself is deliberately
// not persisted; it resets on every restart.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance at the given path
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.WatchlistEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// UpsertEntry creates or updates a watchlist entry
func (s *Storage) UpsertEntry(entry *domain.WatchlistEntry) error {
	return s.db.Save(entry).Error
}

// GetEntry retrieves a watchlist entry by symbol
func (s *Storage) GetEntry(symbol string) (*domain.WatchlistEntry, error) {
	var entry domain.WatchlistEntry
	err := s.db.First(&entry, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &entry, err
}

// GetAllEntries retrieves the full watchlist
func (s *Storage) GetAllEntries() ([]domain.WatchlistEntry, error) {
	var entries []domain.WatchlistEntry
	err := s.db.Order("symbol").Find(&entries).Error
	return entries, err
}

// ToggleFavorite toggles the favorite status of a watchlist entry
func (s *Storage) ToggleFavorite(symbol string) (bool, error) {
	var entry domain.WatchlistEntry
	if err := s.db.First(&entry, "symbol = ?", symbol).Error; err != nil {
		return false, err
	}

	entry.IsFavorite = !entry.IsFavorite
	err := s.db.Save(&entry).Error
	return entry.IsFavorite, err
}

// DeleteEntry removes a symbol from the watchlist
func (s *Storage) DeleteEntry(symbol string) error {
	return s.db.Where("symbol = ?", symbol).Delete(&domain.WatchlistEntry{}).Error
}
