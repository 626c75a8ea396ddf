package exchange

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"moonwatch/internal/application/port"
)

// Adapter captures everything exchange-specific: market discovery, the
// subscribe handshake, and frame parsing. The Connector drives any
// Adapter through the same session lifecycle.
type Adapter interface {
	Name() string
	WsURL() string

	// DiscoverSymbols returns the exchange-native symbols currently
	// tradable. An empty result means the exchange is unavailable for
	// this session.
	DiscoverSymbols(ctx context.Context) ([]string, error)

	// SubscribeFrames builds the frames to send right after the
	// websocket opens. Some exchanges take one bulk frame, coinone
	// takes one frame per symbol.
	SubscribeFrames(symbols []string) ([][]byte, error)

	// ParseFrame parses one inbound frame. ok is false for recognized
	// non-ticker envelopes (acks, snapshots); an error means the frame
	// was malformed and should be dropped.
	ParseFrame(raw []byte) (tick port.Tick, ok bool, err error)
}

// Endpoints configures an adapter's REST and websocket targets.
type Endpoints struct {
	WsURL  string
	APIURL string
}

type Factory func(ep Endpoints) Adapter

var registry = make(map[string]Factory)

// Register is called from each adapter's init().
func Register(name string, factory Factory) {
	if factory == nil {
		log.Warn().Str("exchange", name).Msg("nil adapter factory ignored")
		return
	}
	if _, exists := registry[name]; exists {
		log.Warn().Str("exchange", name).Msg("adapter factory already registered, overwriting")
	}
	registry[name] = factory
}

// Get returns the registered factory for an exchange name.
func Get(name string) (Factory, bool) {
	factory, ok := registry[name]
	return factory, ok
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
