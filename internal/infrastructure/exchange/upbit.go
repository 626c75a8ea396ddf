package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"moonwatch/internal/application/port"
)

func init() {
	Register(Upbit, func(ep Endpoints) Adapter { return NewUpbitAdapter(ep) })
}

type UpbitAdapter struct {
	wsURL  string
	apiURL string
	client *http.Client
}

func NewUpbitAdapter(ep Endpoints) *UpbitAdapter {
	return &UpbitAdapter{
		wsURL:  strings.TrimSpace(ep.WsURL),
		apiURL: strings.TrimRight(strings.TrimSpace(ep.APIURL), "/"),
		client: newHTTPClient(),
	}
}

func (a *UpbitAdapter) Name() string  { return Upbit }
func (a *UpbitAdapter) WsURL() string { return a.wsURL }

type upbitMarket struct {
	Market string `json:"market"`
}

// DiscoverSymbols keeps only KRW markets; the market codes ("KRW-BTC")
// double as the websocket subscription codes.
func (a *UpbitAdapter) DiscoverSymbols(ctx context.Context) ([]string, error) {
	var markets []upbitMarket
	if err := fetchJSON(ctx, a.client, a.apiURL+"/v1/market/all", &markets); err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(markets))
	for _, m := range markets {
		if strings.HasPrefix(m.Market, "KRW-") {
			symbols = append(symbols, m.Market)
		}
	}
	return symbols, nil
}

type upbitTicket struct {
	Ticket string `json:"ticket"`
}

type upbitSubType struct {
	Type           string   `json:"type"`
	Codes          []string `json:"codes"`
	IsOnlyRealtime bool     `json:"isOnlyRealtime"`
}

func (a *UpbitAdapter) SubscribeFrames(symbols []string) ([][]byte, error) {
	frame, err := json.Marshal([]any{
		upbitTicket{Ticket: uuid.NewString()},
		upbitSubType{Type: "ticker", Codes: symbols, IsOnlyRealtime: true},
	})
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

type upbitFrame struct {
	Type       string  `json:"type"`
	Code       string  `json:"code"`
	TradePrice float64 `json:"trade_price"`
}

func (a *UpbitAdapter) ParseFrame(raw []byte) (port.Tick, bool, error) {
	var msg upbitFrame
	if err := json.Unmarshal(raw, &msg); err != nil {
		return port.Tick{}, false, fmt.Errorf("upbit frame: %w", err)
	}
	if msg.Type != "ticker" || msg.TradePrice <= 0 || msg.Code == "" {
		return port.Tick{}, false, nil
	}
	return port.Tick{
		Exchange: Upbit,
		Symbol:   Normalize(Upbit, msg.Code),
		PriceStr: strconv.FormatFloat(msg.TradePrice, 'f', -1, 64),
		PriceNum: msg.TradePrice,
		Ts:       time.Now().UnixMilli(),
	}, true, nil
}
