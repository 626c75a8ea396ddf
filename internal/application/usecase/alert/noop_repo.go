package alert

import (
	"context"

	"moonwatch/internal/application/port"
)

type noopRepo struct{}

// NewNoopRepo satisfies the journal port when storage is disabled.
func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) InsertTrigger(ctx context.Context, alertID, exchange, symbol, direction string, threshold, price float64, ts int64) error {
	return nil
}

func (n *noopRepo) Close() error { return nil }
