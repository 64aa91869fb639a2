package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type alertStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAlertStorage creates a new AlertStore backed by BadgerHold.
func NewAlertStorage(store *Store, logger *common.Logger) *alertStorage {
	return &alertStorage{store: store, logger: logger}
}

func (s *alertStorage) GetForUser(_ context.Context, id, userID string) (*models.Alert, error) {
	var alert models.Alert
	err := s.store.db.Get(id, &alert)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.NotFoundf("alert '%s'", id)
		}
		return nil, fmt.Errorf("failed to get alert '%s': %w", id, err)
	}
	if alert.UserID != userID {
		return nil, common.NotFoundf("alert '%s' for user '%s'", id, userID)
	}
	return &alert, nil
}

func (s *alertStorage) ListByUser(_ context.Context, userID string) ([]*models.Alert, error) {
	var alerts []*models.Alert
	query := badgerhold.Where("UserID").Eq(userID).Index("UserID").SortBy("CreatedAt").Reverse()
	if err := s.store.db.Find(&alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list alerts for user '%s': %w", userID, err)
	}
	return alerts, nil
}

func (s *alertStorage) ListActiveUntriggered(_ context.Context) ([]*models.Alert, error) {
	var alerts []*models.Alert
	query := badgerhold.Where("IsActive").Eq(true).And("IsTriggered").Eq(false)
	if err := s.store.db.Find(&alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list pending alerts: %w", err)
	}
	return alerts, nil
}

func (s *alertStorage) Save(_ context.Context, alert *models.Alert) error {
	alert.UpdatedAt = time.Now()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = alert.UpdatedAt
	}

	if err := s.store.db.Upsert(alert.ID, alert); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	s.logger.Debug().Str("id", alert.ID).Str("coin", alert.CoinID).Msg("Alert saved")
	return nil
}

func (s *alertStorage) Delete(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Alert{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete alert '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Alert deleted")
	return nil
}
