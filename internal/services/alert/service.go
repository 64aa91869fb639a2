// Package alert implements price alerts and their batch evaluation.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/piodois/CryptoVault/internal/common"
	"github.com/piodois/CryptoVault/internal/interfaces"
	"github.com/piodois/CryptoVault/internal/models"
)

// Compile-time interface check
var _ interfaces.AlertService = (*Service)(nil)

// Service implements AlertService
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketClient
	logger  *common.Logger
}

// NewService creates a new alert service
func NewService(storage interfaces.StorageManager, market interfaces.MarketClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// CreateAlert registers a new alert. New alerts start active and untriggered.
func (s *Service) CreateAlert(ctx context.Context, input interfaces.CreateAlertInput) (*models.Alert, error) {
	if input.UserID == "" {
		return nil, common.InvalidOperationf("user id is required")
	}
	if input.CoinID == "" || input.Symbol == "" {
		return nil, common.InvalidOperationf("coin id and symbol are required")
	}
	if !input.Condition.Valid() {
		return nil, common.InvalidOperationf("unknown alert condition '%s'", input.Condition)
	}
	if input.TargetPrice <= 0 {
		return nil, common.InvalidOperationf("target price must be positive")
	}

	alert := &models.Alert{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		CoinID:      input.CoinID,
		Symbol:      input.Symbol,
		Condition:   input.Condition,
		TargetPrice: input.TargetPrice,
		IsActive:    true,
		IsTriggered: false,
	}

	if err := s.storage.Alerts().Save(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", alert.ID).
		Str("coin", alert.CoinID).
		Str("condition", string(alert.Condition)).
		Float64("target", alert.TargetPrice).
		Msg("Alert created")

	return alert, nil
}

// GetUserAlerts returns the user's alerts, newest first.
func (s *Service) GetUserAlerts(ctx context.Context, userID string) ([]*models.Alert, error) {
	return s.storage.Alerts().ListByUser(ctx, userID)
}

// UpdateAlert applies a partial update. Re-activating an alert clears its
// triggered state so the evaluator picks it up again.
func (s *Service) UpdateAlert(ctx context.Context, alertID, userID string, update interfaces.AlertUpdate) (*models.Alert, error) {
	alert, err := s.storage.Alerts().GetForUser(ctx, alertID, userID)
	if err != nil {
		return nil, err
	}

	if update.TargetPrice != nil {
		if *update.TargetPrice <= 0 {
			return nil, common.InvalidOperationf("target price must be positive")
		}
		alert.TargetPrice = *update.TargetPrice
	}
	if update.IsActive != nil {
		alert.IsActive = *update.IsActive
		if alert.IsActive {
			alert.IsTriggered = false
			alert.TriggeredAt = nil
		}
	}

	if err := s.storage.Alerts().Save(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// DeleteAlert removes the user's alert.
func (s *Service) DeleteAlert(ctx context.Context, alertID, userID string) error {
	if _, err := s.storage.Alerts().GetForUser(ctx, alertID, userID); err != nil {
		return err
	}
	return s.storage.Alerts().Delete(ctx, alertID)
}

// CheckAlerts evaluates every active, untriggered alert against current
// prices. Coins without a current price are skipped and remain pending, so a
// provider outage delays alerts instead of losing them. Triggered alerts are
// latched; re-running against the same prices fires nothing new.
func (s *Service) CheckAlerts(ctx context.Context) ([]*models.TriggeredAlert, error) {
	pending, err := s.storage.Alerts().ListActiveUntriggered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending alerts: %w", err)
	}
	if len(pending) == 0 {
		return []*models.TriggeredAlert{}, nil
	}

	coinIDs := make([]string, 0, len(pending))
	seen := make(map[string]bool, len(pending))
	for _, a := range pending {
		if !seen[a.CoinID] {
			seen[a.CoinID] = true
			coinIDs = append(coinIDs, a.CoinID)
		}
	}

	prices, err := s.market.GetPrices(ctx, coinIDs)
	if err != nil {
		s.logger.Warn().Err(err).Int("alerts", len(pending)).Msg("Price lookup failed, deferring alert check")
		prices = map[string]float64{}
	}

	triggered := make([]*models.TriggeredAlert, 0)
	for _, a := range pending {
		// A zero price is a provider artifact, not a quote; treat it the same
		// as a missing one so BELOW alerts don't fire on bad data.
		price, ok := prices[a.CoinID]
		if !ok || price <= 0 {
			continue
		}
		if !a.ShouldTrigger(price) {
			continue
		}

		now := time.Now()
		a.IsTriggered = true
		a.TriggeredAt = &now
		if err := s.storage.Alerts().Save(ctx, a); err != nil {
			return nil, err
		}

		s.logger.Info().
			Str("id", a.ID).
			Str("coin", a.CoinID).
			Str("condition", string(a.Condition)).
			Float64("target", a.TargetPrice).
			Float64("price", price).
			Msg("Alert triggered")

		triggered = append(triggered, &models.TriggeredAlert{
			Alert:        *a,
			CurrentPrice: price,
		})
	}

	return triggered, nil
}
