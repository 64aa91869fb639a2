package models

import "time"

// AlertCondition is the direction a price alert watches.
type AlertCondition string

const (
	AlertAbove AlertCondition = "ABOVE"
	AlertBelow AlertCondition = "BELOW"
)

// Valid reports whether c is a known alert condition.
func (c AlertCondition) Valid() bool {
	return c == AlertAbove || c == AlertBelow
}

// Alert is a price alert. Once triggered it is not re-evaluated until
// externally reset (isTriggered cleared via update).
type Alert struct {
	ID          string         `json:"id" badgerhold:"key"`
	UserID      string         `json:"user_id" badgerhold:"index"`
	CoinID      string         `json:"coin_id"`
	Symbol      string         `json:"symbol"`
	Condition   AlertCondition `json:"condition"`
	TargetPrice float64        `json:"target_price"`
	IsActive    bool           `json:"is_active"`
	IsTriggered bool           `json:"is_triggered"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ShouldTrigger reports whether the alert fires at the given price.
// Both boundaries are inclusive.
func (a *Alert) ShouldTrigger(currentPrice float64) bool {
	switch a.Condition {
	case AlertAbove:
		return currentPrice >= a.TargetPrice
	case AlertBelow:
		return currentPrice <= a.TargetPrice
	}
	return false
}

// TriggeredAlert is an alert that fired during a check, with the price that
// tripped it.
type TriggeredAlert struct {
	Alert
	CurrentPrice float64 `json:"current_price"`
}
