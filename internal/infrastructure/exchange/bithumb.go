package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"moonwatch/internal/application/port"
)

func init() {
	Register(Bithumb, func(ep Endpoints) Adapter { return NewBithumbAdapter(ep) })
}

type BithumbAdapter struct {
	wsURL  string
	apiURL string
	client *http.Client
}

func NewBithumbAdapter(ep Endpoints) *BithumbAdapter {
	return &BithumbAdapter{
		wsURL:  strings.TrimSpace(ep.WsURL),
		apiURL: strings.TrimRight(strings.TrimSpace(ep.APIURL), "/"),
		client: newHTTPClient(),
	}
}

func (a *BithumbAdapter) Name() string  { return Bithumb }
func (a *BithumbAdapter) WsURL() string { return a.wsURL }

type bithumbTickerAll struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

// DiscoverSymbols lists every KRW market from the all-tickers endpoint.
// The payload is keyed by coin symbol, with a stray "date" entry.
func (a *BithumbAdapter) DiscoverSymbols(ctx context.Context) ([]string, error) {
	var resp bithumbTickerAll
	if err := fetchJSON(ctx, a.client, a.apiURL+"/public/ticker/ALL_KRW", &resp); err != nil {
		return nil, err
	}
	if resp.Status != "0000" || len(resp.Data) == 0 {
		return nil, fmt.Errorf("bithumb market list: status %q %s", resp.Status, resp.Message)
	}

	symbols := make([]string, 0, len(resp.Data))
	for sym := range resp.Data {
		if sym == "date" {
			continue
		}
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

type bithumbSubscribe struct {
	Symbols   []string `json:"symbols"`
	TickTypes []string `json:"tickTypes"`
	Type      string   `json:"type"`
}

func (a *BithumbAdapter) SubscribeFrames(symbols []string) ([][]byte, error) {
	pairs := make([]string, len(symbols))
	for i, s := range symbols {
		pairs[i] = s + "_KRW"
	}
	frame, err := json.Marshal(bithumbSubscribe{
		Symbols:   pairs,
		TickTypes: []string{"24H"},
		Type:      "ticker",
	})
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

type bithumbFrame struct {
	Type    string `json:"type"`
	Content *struct {
		Symbol     string `json:"symbol"`
		ClosePrice string `json:"closePrice"`
	} `json:"content"`
}

func (a *BithumbAdapter) ParseFrame(raw []byte) (port.Tick, bool, error) {
	var msg bithumbFrame
	if err := json.Unmarshal(raw, &msg); err != nil {
		return port.Tick{}, false, fmt.Errorf("bithumb frame: %w", err)
	}
	// connection acks arrive as {"status":"0000",...} with no type
	if msg.Type != "ticker" || msg.Content == nil {
		return port.Tick{}, false, nil
	}
	px := strings.TrimSpace(msg.Content.ClosePrice)
	if msg.Content.Symbol == "" || px == "" {
		return port.Tick{}, false, nil
	}
	n, err := strconv.ParseFloat(px, 64)
	if err != nil {
		return port.Tick{}, false, fmt.Errorf("bithumb price %q: %w", px, err)
	}
	return port.Tick{
		Exchange: Bithumb,
		Symbol:   Normalize(Bithumb, msg.Content.Symbol),
		PriceStr: px,
		PriceNum: n,
		Ts:       time.Now().UnixMilli(),
	}, true, nil
}
