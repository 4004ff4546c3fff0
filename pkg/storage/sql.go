package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mosketh/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore persists payloads in the client_state table.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStore constructs a store bound to the provided DB.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Load returns the payload saved under key.
func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, error) {
	var row models.ClientState
	err := s.db.WithContext(ctx).
		Where("state_key = ?", key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(row.Payload), nil
}

// Save upserts the payload for key.
func (s *SQLStore) Save(ctx context.Context, key string, payload []byte) error {
	row := models.ClientState{
		StateKey:  key,
		Payload:   string(payload),
		UpdatedAt: s.now().UTC(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}

// Delete removes the row for key. Missing rows are not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("state_key = ?", key).
		Delete(&models.ClientState{}).Error
}

// PurgeBefore drops rows untouched since cutoff and reports how many were removed.
func (s *SQLStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("updated_at < ?", cutoff.UTC()).
		Delete(&models.ClientState{})
	return res.RowsAffected, res.Error
}
