package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestKorbitDiscoverSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ticker/detailed/all" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"btc_krw":{"last":"1"},"eth_krw":{"last":"2"},"btc_usdt":{"last":"3"}}`))
	}))
	defer srv.Close()

	a := NewKorbitAdapter(Endpoints{APIURL: srv.URL})
	symbols, err := a.DiscoverSymbols(context.Background())
	if err != nil {
		t.Fatalf("DiscoverSymbols failed: %v", err)
	}
	if !reflect.DeepEqual(symbols, []string{"btc_krw", "eth_krw"}) {
		t.Errorf("symbols = %v, want krw markets only", symbols)
	}
}

func TestKorbitSubscribeFrames(t *testing.T) {
	a := NewKorbitAdapter(Endpoints{})
	frames, err := a.SubscribeFrames([]string{"btc_krw", "eth_krw"})
	if err != nil {
		t.Fatalf("SubscribeFrames failed: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected one frame, got %d", len(frames))
	}

	var subs []korbitSubscribe
	if err := json.Unmarshal(frames[0], &subs); err != nil {
		t.Fatalf("frame not a json array: %v", err)
	}
	if len(subs) != 1 || subs[0].Method != "subscribe" || subs[0].Type != "ticker" {
		t.Errorf("unexpected envelope: %+v", subs)
	}
	if !reflect.DeepEqual(subs[0].Symbols, []string{"btc_krw", "eth_krw"}) {
		t.Errorf("symbols = %v", subs[0].Symbols)
	}
}

func TestKorbitParseFrame(t *testing.T) {
	a := NewKorbitAdapter(Endpoints{})

	tick, ok, err := a.ParseFrame([]byte(`{"type":"ticker","symbol":"btc_krw","data":{"close":"50000000"}}`))
	if err != nil || !ok {
		t.Fatalf("ticker frame: ok=%v err=%v", ok, err)
	}
	if tick.Exchange != Korbit || tick.Symbol != "BTC" || tick.PriceNum != 50000000 {
		t.Errorf("tick = %+v", tick)
	}

	// initial snapshot dump is discarded
	if _, ok, err := a.ParseFrame([]byte(`{"snapshot":{"btc_krw":{"close":"1"}}}`)); ok || err != nil {
		t.Errorf("snapshot frame: ok=%v err=%v", ok, err)
	}
	if _, ok, err := a.ParseFrame([]byte(`{"snapshot":true,"type":"ticker","symbol":"btc_krw","data":{"close":"1"}}`)); ok || err != nil {
		t.Errorf("snapshot=true frame: ok=%v err=%v", ok, err)
	}

	// only a truthy snapshot flag marks a snapshot; false/null frames
	// are live updates
	tick, ok, err = a.ParseFrame([]byte(`{"snapshot":false,"type":"ticker","symbol":"eth_krw","data":{"close":"3000000"}}`))
	if err != nil || !ok {
		t.Fatalf("snapshot=false frame: ok=%v err=%v", ok, err)
	}
	if tick.Symbol != "ETH" || tick.PriceNum != 3000000 {
		t.Errorf("tick = %+v", tick)
	}
	if _, ok, err := a.ParseFrame([]byte(`{"snapshot":null,"type":"ticker","symbol":"btc_krw","data":{"close":"2"}}`)); !ok || err != nil {
		t.Errorf("snapshot=null frame: ok=%v err=%v", ok, err)
	}

	if _, ok, _ := a.ParseFrame([]byte(`{"type":"pong"}`)); ok {
		t.Error("pong frame should be ignorable")
	}

	if _, _, err := a.ParseFrame([]byte(`[`)); err == nil {
		t.Error("malformed frame should error")
	}
}
