package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moonwatch/internal/application/port"
)

func init() {
	Register(Coinone, func(ep Endpoints) Adapter { return NewCoinoneAdapter(ep) })
}

type CoinoneAdapter struct {
	wsURL  string
	apiURL string
	client *http.Client
}

func NewCoinoneAdapter(ep Endpoints) *CoinoneAdapter {
	return &CoinoneAdapter{
		wsURL:  strings.TrimSpace(ep.WsURL),
		apiURL: strings.TrimRight(strings.TrimSpace(ep.APIURL), "/"),
		client: newHTTPClient(),
	}
}

func (a *CoinoneAdapter) Name() string  { return Coinone }
func (a *CoinoneAdapter) WsURL() string { return a.wsURL }

type coinoneTickers struct {
	Tickers []struct {
		TargetCurrency string `json:"target_currency"`
	} `json:"tickers"`
}

func (a *CoinoneAdapter) DiscoverSymbols(ctx context.Context) ([]string, error) {
	var resp coinoneTickers
	if err := fetchJSON(ctx, a.client, a.apiURL+"/public/v2/ticker_new/KRW?additional_data=true", &resp); err != nil {
		return nil, err
	}
	if resp.Tickers == nil {
		return nil, fmt.Errorf("coinone market list: no tickers in response")
	}
	symbols := make([]string, 0, len(resp.Tickers))
	for _, t := range resp.Tickers {
		symbols = append(symbols, strings.ToUpper(t.TargetCurrency))
	}
	return symbols, nil
}

type coinoneTopic struct {
	TargetCurrency string `json:"target_currency"`
	QuoteCurrency  string `json:"quote_currency"`
}

type coinoneSubscribe struct {
	Topic       coinoneTopic `json:"topic"`
	RequestType string       `json:"request_type"`
	Channel     string       `json:"channel"`
}

// SubscribeFrames emits one frame per symbol; coinone has no bulk
// subscription.
func (a *CoinoneAdapter) SubscribeFrames(symbols []string) ([][]byte, error) {
	frames := make([][]byte, 0, len(symbols))
	for _, sym := range symbols {
		frame, err := json.Marshal(coinoneSubscribe{
			Topic:       coinoneTopic{TargetCurrency: sym, QuoteCurrency: "KRW"},
			RequestType: "SUBSCRIBE",
			Channel:     "TICKER",
		})
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

type coinoneFrame struct {
	ResponseType string `json:"response_type"`
	Channel      string `json:"channel"`
	Data         *struct {
		TargetCurrency string `json:"target_currency"`
		Last           string `json:"last"`
	} `json:"data"`
}

func (a *CoinoneAdapter) ParseFrame(raw []byte) (port.Tick, bool, error) {
	var msg coinoneFrame
	if err := json.Unmarshal(raw, &msg); err != nil {
		return port.Tick{}, false, fmt.Errorf("coinone frame: %w", err)
	}
	// CONNECTED / SUBSCRIBED / PONG status envelopes
	if msg.ResponseType != "DATA" || msg.Channel != "TICKER" || msg.Data == nil {
		return port.Tick{}, false, nil
	}
	px := strings.TrimSpace(msg.Data.Last)
	if msg.Data.TargetCurrency == "" || px == "" {
		return port.Tick{}, false, nil
	}
	n, err := strconv.ParseFloat(px, 64)
	if err != nil {
		return port.Tick{}, false, fmt.Errorf("coinone price %q: %w", px, err)
	}
	return port.Tick{
		Exchange: Coinone,
		Symbol:   Normalize(Coinone, msg.Data.TargetCurrency),
		PriceStr: px,
		PriceNum: n,
		Ts:       time.Now().UnixMilli(),
	}, true, nil
}
