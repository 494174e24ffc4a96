package runs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultLimit is the page size used when List is called without a positive limit.
	DefaultLimit = 20
	// MaxLimit caps a single List call.
	MaxLimit = 500
)

// ErrNoDatabase is returned by a Store created without a connection.
var ErrNoDatabase = errors.New("run ledger has no database connection")

// Store persists merge runs.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on db. A nil db yields a Store whose calls fail with ErrNoDatabase.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Enabled reports whether the store has a database connection.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

// Migrate creates or updates the merge_runs table.
func (s *Store) Migrate(ctx context.Context) error {
	if !s.Enabled() {
		return ErrNoDatabase
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&Run{}); err != nil {
		return fmt.Errorf("migrate merge_runs: %w", err)
	}
	return nil
}

// Record inserts run, assigning it an id when it has none.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if !s.Enabled() {
		return ErrNoDatabase
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if !s.Enabled() {
		return nil, ErrNoDatabase
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var out []Run
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}
