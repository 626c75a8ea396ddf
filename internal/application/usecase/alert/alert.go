package alert

import (
	"errors"
	"strings"
)

type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

var (
	ErrEmptyExchange = errors.New("exchange is required")
	ErrEmptySymbol   = errors.New("coin is required")
	ErrEmptyToken    = errors.New("fcmToken is required")
	ErrBadThreshold  = errors.New("price must be greater than zero")
	ErrBadDirection  = errors.New("condition must be 'above' or 'below'")
)

// Alert is a standing one-shot request: notify Token once Symbol on
// Exchange crosses Threshold in Direction. Exchange is stored lower
// case; Symbol is the canonical uppercase ticker as supplied by the
// caller.
type Alert struct {
	ID        string
	Exchange  string
	Symbol    string
	Threshold float64
	Direction Direction
	Token     string
}

func (a Alert) validate() error {
	if strings.TrimSpace(a.Exchange) == "" {
		return ErrEmptyExchange
	}
	if strings.TrimSpace(a.Symbol) == "" {
		return ErrEmptySymbol
	}
	if strings.TrimSpace(a.Token) == "" {
		return ErrEmptyToken
	}
	if a.Threshold <= 0 {
		return ErrBadThreshold
	}
	if a.Direction != DirectionAbove && a.Direction != DirectionBelow {
		return ErrBadDirection
	}
	return nil
}

// satisfiedBy reports whether price meets the alert condition.
// Thresholds are inclusive on both directions.
func (a Alert) satisfiedBy(price float64) bool {
	if a.Direction == DirectionAbove {
		return price >= a.Threshold
	}
	return price <= a.Threshold
}
