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
	Register(Korbit, func(ep Endpoints) Adapter { return NewKorbitAdapter(ep) })
}

type KorbitAdapter struct {
	wsURL  string
	apiURL string
	client *http.Client
}

func NewKorbitAdapter(ep Endpoints) *KorbitAdapter {
	return &KorbitAdapter{
		wsURL:  strings.TrimSpace(ep.WsURL),
		apiURL: strings.TrimRight(strings.TrimSpace(ep.APIURL), "/"),
		client: newHTTPClient(),
	}
}

func (a *KorbitAdapter) Name() string  { return Korbit }
func (a *KorbitAdapter) WsURL() string { return a.wsURL }

// DiscoverSymbols keeps the lowercase "_krw" market keys of the
// detailed-ticker payload; korbit subscribes with those verbatim.
func (a *KorbitAdapter) DiscoverSymbols(ctx context.Context) ([]string, error) {
	var resp map[string]json.RawMessage
	if err := fetchJSON(ctx, a.client, a.apiURL+"/v1/ticker/detailed/all", &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("korbit market list: empty response")
	}
	symbols := make([]string, 0, len(resp))
	for sym := range resp {
		if strings.HasSuffix(sym, "_krw") {
			symbols = append(symbols, strings.ToLower(sym))
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

type korbitSubscribe struct {
	Method  string   `json:"method"`
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

func (a *KorbitAdapter) SubscribeFrames(symbols []string) ([][]byte, error) {
	frame, err := json.Marshal([]korbitSubscribe{{
		Method:  "subscribe",
		Type:    "ticker",
		Symbols: symbols,
	}})
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

type korbitFrame struct {
	Snapshot any    `json:"snapshot"`
	Type     string `json:"type"`
	Symbol   string `json:"symbol"`
	Data     *struct {
		Close string `json:"close"`
	} `json:"data"`
}

// snapshotMarked reports whether the frame carries a truthy snapshot
// flag; `"snapshot": false` or null is still a live update.
func snapshotMarked(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func (a *KorbitAdapter) ParseFrame(raw []byte) (port.Tick, bool, error) {
	var msg korbitFrame
	if err := json.Unmarshal(raw, &msg); err != nil {
		return port.Tick{}, false, fmt.Errorf("korbit frame: %w", err)
	}
	// the initial snapshot dump is not a live update
	if snapshotMarked(msg.Snapshot) {
		return port.Tick{}, false, nil
	}
	if msg.Type != "ticker" || msg.Data == nil || msg.Symbol == "" {
		return port.Tick{}, false, nil
	}
	px := strings.TrimSpace(msg.Data.Close)
	if px == "" {
		return port.Tick{}, false, nil
	}
	n, err := strconv.ParseFloat(px, 64)
	if err != nil {
		return port.Tick{}, false, fmt.Errorf("korbit price %q: %w", px, err)
	}
	return port.Tick{
		Exchange: Korbit,
		Symbol:   Normalize(Korbit, msg.Symbol),
		PriceStr: px,
		PriceNum: n,
		Ts:       time.Now().UnixMilli(),
	}, true, nil
}
