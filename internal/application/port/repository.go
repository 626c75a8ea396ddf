package port

import "context"

// Repository records fired triggers for auditing. The live alert set is
// in-memory only; this is an append-only journal, not alert storage.
type Repository interface {
	InsertTrigger(ctx context.Context, alertID, exchange, symbol, direction string, threshold, price float64, ts int64) error
	Close() error
}
