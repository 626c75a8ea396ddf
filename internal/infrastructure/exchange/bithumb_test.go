package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestBithumbDiscoverSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/ticker/ALL_KRW" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"0000","data":{"BTC":{"closing_price":"1"},"ETH":{"closing_price":"2"},"date":"1700000000000"}}`))
	}))
	defer srv.Close()

	a := NewBithumbAdapter(Endpoints{APIURL: srv.URL})
	symbols, err := a.DiscoverSymbols(context.Background())
	if err != nil {
		t.Fatalf("DiscoverSymbols failed: %v", err)
	}
	if !reflect.DeepEqual(symbols, []string{"BTC", "ETH"}) {
		t.Errorf("symbols = %v, want [BTC ETH]", symbols)
	}
}

func TestBithumbDiscoverErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"5500","message":"Invalid Parameter"}`))
	}))
	defer srv.Close()

	a := NewBithumbAdapter(Endpoints{APIURL: srv.URL})
	if _, err := a.DiscoverSymbols(context.Background()); err == nil {
		t.Fatal("expected error on non-0000 status")
	}
}

func TestBithumbSubscribeFrames(t *testing.T) {
	a := NewBithumbAdapter(Endpoints{})
	frames, err := a.SubscribeFrames([]string{"BTC", "ETH"})
	if err != nil {
		t.Fatalf("SubscribeFrames failed: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected one bulk frame, got %d", len(frames))
	}

	var sub bithumbSubscribe
	if err := json.Unmarshal(frames[0], &sub); err != nil {
		t.Fatalf("frame not valid json: %v", err)
	}
	if sub.Type != "ticker" || !reflect.DeepEqual(sub.TickTypes, []string{"24H"}) {
		t.Errorf("unexpected envelope: %+v", sub)
	}
	if !reflect.DeepEqual(sub.Symbols, []string{"BTC_KRW", "ETH_KRW"}) {
		t.Errorf("symbols = %v, want [BTC_KRW ETH_KRW]", sub.Symbols)
	}
}

func TestBithumbParseFrame(t *testing.T) {
	a := NewBithumbAdapter(Endpoints{})

	tick, ok, err := a.ParseFrame([]byte(`{"type":"ticker","content":{"symbol":"BTC_KRW","closePrice":"50000000"}}`))
	if err != nil || !ok {
		t.Fatalf("ticker frame: ok=%v err=%v", ok, err)
	}
	if tick.Exchange != Bithumb || tick.Symbol != "BTC" || tick.PriceNum != 50000000 {
		t.Errorf("tick = %+v", tick)
	}

	// connection ack has no type field
	if _, ok, err := a.ParseFrame([]byte(`{"status":"0000","resmsg":"Connected Successfully"}`)); ok || err != nil {
		t.Errorf("ack frame: ok=%v err=%v", ok, err)
	}

	if _, _, err := a.ParseFrame([]byte(`not json`)); err == nil {
		t.Error("malformed frame should error")
	}

	if _, _, err := a.ParseFrame([]byte(`{"type":"ticker","content":{"symbol":"BTC_KRW","closePrice":"abc"}}`)); err == nil {
		t.Error("unparsable price should error")
	}
}
