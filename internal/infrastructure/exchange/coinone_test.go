package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestCoinoneDiscoverSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/v2/ticker_new/KRW" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"result":"success","tickers":[{"target_currency":"btc"},{"target_currency":"eth"}]}`))
	}))
	defer srv.Close()

	a := NewCoinoneAdapter(Endpoints{APIURL: srv.URL})
	symbols, err := a.DiscoverSymbols(context.Background())
	if err != nil {
		t.Fatalf("DiscoverSymbols failed: %v", err)
	}
	if !reflect.DeepEqual(symbols, []string{"BTC", "ETH"}) {
		t.Errorf("symbols = %v, want [BTC ETH]", symbols)
	}
}

func TestCoinoneDiscoverNoTickers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error"}`))
	}))
	defer srv.Close()

	a := NewCoinoneAdapter(Endpoints{APIURL: srv.URL})
	if _, err := a.DiscoverSymbols(context.Background()); err == nil {
		t.Fatal("expected error when tickers missing")
	}
}

func TestCoinoneSubscribeFrames(t *testing.T) {
	a := NewCoinoneAdapter(Endpoints{})
	frames, err := a.SubscribeFrames([]string{"BTC", "ETH", "XRP"})
	if err != nil {
		t.Fatalf("SubscribeFrames failed: %v", err)
	}
	// coinone subscribes one symbol per frame
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}

	var sub coinoneSubscribe
	if err := json.Unmarshal(frames[0], &sub); err != nil {
		t.Fatalf("frame not valid json: %v", err)
	}
	if sub.RequestType != "SUBSCRIBE" || sub.Channel != "TICKER" {
		t.Errorf("unexpected envelope: %+v", sub)
	}
	if sub.Topic.TargetCurrency != "BTC" || sub.Topic.QuoteCurrency != "KRW" {
		t.Errorf("unexpected topic: %+v", sub.Topic)
	}
}

func TestCoinoneParseFrame(t *testing.T) {
	a := NewCoinoneAdapter(Endpoints{})

	tick, ok, err := a.ParseFrame([]byte(`{"response_type":"DATA","channel":"TICKER","data":{"target_currency":"btc","last":"50000000"}}`))
	if err != nil || !ok {
		t.Fatalf("data frame: ok=%v err=%v", ok, err)
	}
	if tick.Exchange != Coinone || tick.Symbol != "BTC" || tick.PriceNum != 50000000 {
		t.Errorf("tick = %+v", tick)
	}

	for _, frame := range []string{
		`{"response_type":"CONNECTED"}`,
		`{"response_type":"SUBSCRIBED","channel":"TICKER"}`,
	} {
		if _, ok, err := a.ParseFrame([]byte(frame)); ok || err != nil {
			t.Errorf("status frame %s: ok=%v err=%v", frame, ok, err)
		}
	}

	if _, _, err := a.ParseFrame([]byte(`garbage`)); err == nil {
		t.Error("malformed frame should error")
	}
}
