package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"moonwatch/internal/application/port"
)

// LogNotifier stands in when no FCM credentials are configured: every
// would-be push is written to the log instead.
type LogNotifier struct{}

func NewLog() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Send(ctx context.Context, token, title, body string) error {
	log.Info().Str("token", token).Str("title", title).Str("body", body).Msg("push delivery disabled, logging only")
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)
