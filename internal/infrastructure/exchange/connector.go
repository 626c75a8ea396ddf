package exchange

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"moonwatch/internal/application/port"
)

const (
	discoverTimeout = 10 * time.Second
	dialTimeout     = 10 * time.Second
	readDeadline    = 60 * time.Second
	pingInterval    = 25 * time.Second
	initialBackoff  = 500 * time.Millisecond
	maxBackoff      = 30 * time.Second
)

var errEmptyCatalog = errors.New("no tradable symbols discovered")

// reconnectBackoff yields the delay before the next session attempt,
// doubling up to maxBackoff with jitter so the four feeds don't
// thunder in lockstep. reset is called once a session reaches
// streaming, so an established feed that drops redials quickly.
type reconnectBackoff struct {
	cur time.Duration
}

func (b *reconnectBackoff) next() time.Duration {
	if b.cur == 0 {
		b.cur = initialBackoff
	}
	delay := b.cur + time.Duration(rand.Int63n(int64(b.cur)))
	b.cur = minDur(b.cur*2, maxBackoff)
	return delay
}

func (b *reconnectBackoff) reset() {
	b.cur = initialBackoff
}

// Connector runs one exchange's subscription session: discover the
// tradable symbols, dial the stream, subscribe, and forward parsed
// ticks. Failed sessions are retried with exponential backoff plus
// jitter; discovery re-runs on every attempt since the tradable set
// may have changed.
type Connector struct {
	adapter Adapter
}

func NewConnector(a Adapter) *Connector {
	return &Connector{adapter: a}
}

func (c *Connector) Name() string { return c.adapter.Name() }

func (c *Connector) Subscribe(ctx context.Context) (<-chan port.Tick, error) {
	out := make(chan port.Tick, 1024)
	go c.run(ctx, out)
	return out, nil
}

func (c *Connector) run(ctx context.Context, out chan<- port.Tick) {
	defer close(out)

	var backoff reconnectBackoff
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := c.session(ctx, out, backoff.reset)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			log.Warn().Str("feed", c.Name()).Err(err).Msg("session ended, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff.next()):
		}
	}
}

// session runs one discover-dial-subscribe-read cycle. onStream is
// invoked once the subscribe frames are on the wire, i.e. the session
// got past the setup phase.
func (c *Connector) session(ctx context.Context, out chan<- port.Tick, onStream func()) error {
	dctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	symbols, err := c.adapter.DiscoverSymbols(dctx)
	cancel()
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	if len(symbols) == 0 {
		log.Error().Str("feed", c.Name()).Msg("empty catalog, not connecting")
		return errEmptyCatalog
	}
	log.Info().Str("feed", c.Name()).Int("symbols", len(symbols)).Msg("catalog discovered")

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.adapter.WsURL(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	frames, err := c.adapter.SubscribeFrames(symbols)
	if err != nil {
		return fmt.Errorf("subscribe frames: %w", err)
	}
	for _, frame := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
	}
	log.Info().Str("feed", c.Name()).Int("symbols", len(symbols)).Msg("subscribed")
	onStream()

	return c.readLoop(ctx, conn, out)
}

func (c *Connector) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- port.Tick) error {
	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			tick, ok, perr := c.adapter.ParseFrame(b)
			if perr != nil {
				log.Error().Str("feed", c.Name()).Err(perr).Msg("frame dropped")
				continue
			}
			if !ok {
				continue
			}
			select {
			case out <- tick:
			case <-ctx.Done():
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			// unblock the reader, then wait for it so the tick channel
			// is never closed under an in-flight send
			_ = conn.Close()
			<-errCh
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
