package alert

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"moonwatch/internal/application/port"
)

const defaultTitle = "투더문 알림"

type ServiceDeps struct {
	Feeds    []port.PriceFeed
	Registry *Registry
	Notifier port.Notifier
	Repo     port.Repository
	Title    string // notification title, defaults to the app title
}

// Service consumes every feed's tick stream and dispatches trigger
// notifications. Each feed gets its own consumer goroutine; the only
// shared state is the registry.
type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	if deps.Title == "" {
		deps.Title = defaultTitle
	}
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	return &Service{deps: deps}
}

func (s *Service) Run(ctx context.Context) error {
	if len(s.deps.Feeds) == 0 {
		return errors.New("no feeds")
	}

	var wg sync.WaitGroup
	for _, feed := range s.deps.Feeds {
		ch, err := feed.Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", feed.Name(), err)
		}
		wg.Add(1)
		go func(name string, in <-chan port.Tick) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-in:
					if !ok {
						return
					}
					s.handleTick(ctx, t)
				}
			}
		}(feed.Name(), ch)
		log.Info().Str("feed", feed.Name()).Msg("feed started")
	}

	wg.Wait()
	return ctx.Err()
}

func (s *Service) handleTick(ctx context.Context, t port.Tick) {
	triggers := s.deps.Registry.Match(t)
	for _, tr := range triggers {
		log.Info().
			Str("exchange", tr.Alert.Exchange).
			Str("symbol", tr.Alert.Symbol).
			Str("condition", string(tr.Alert.Direction)).
			Float64("threshold", tr.Alert.Threshold).
			Float64("price", tr.Price).
			Msg("alert triggered")

		if err := s.deps.Repo.InsertTrigger(ctx, tr.Alert.ID, tr.Alert.Exchange, tr.Alert.Symbol,
			string(tr.Alert.Direction), tr.Alert.Threshold, tr.Price, tr.Ts); err != nil {
			log.Error().Err(err).Str("alert", tr.Alert.ID).Msg("trigger journal write failed")
		}

		// the alert is already consumed; a failed send is logged and lost
		if err := s.deps.Notifier.Send(ctx, tr.Alert.Token, s.deps.Title, triggerBody(tr.Alert)); err != nil {
			log.Error().Err(err).Str("alert", tr.Alert.ID).Msg("push delivery failed")
		}
	}
}

func triggerBody(a Alert) string {
	word := "이상"
	if a.Direction == DirectionBelow {
		word = "이하"
	}
	price := strconv.FormatFloat(a.Threshold, 'f', -1, 64)
	return fmt.Sprintf("📢 %s %s이(가) %s %s원 도달!", strings.ToUpper(a.Exchange), a.Symbol, word, price)
}
