package port

import "context"

// Tick is one normalized price observation: Exchange in lower case
// ("bithumb", "upbit", ...), Symbol already canonical ("BTC").
type Tick struct {
	Exchange string
	Symbol   string
	PriceStr string  // raw string as received
	PriceNum float64 // parsed
	Ts       int64   // unix ms
}

type PriceFeed interface {
	Name() string
	Subscribe(ctx context.Context) (<-chan Tick, error)
}
