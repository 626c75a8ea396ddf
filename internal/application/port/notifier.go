package port

import "context"

// Notifier delivers a push message to an opaque device token.
// Delivery is best-effort: a returned error is logged by the caller,
// never re-queued.
type Notifier interface {
	Send(ctx context.Context, token, title, body string) error
}
