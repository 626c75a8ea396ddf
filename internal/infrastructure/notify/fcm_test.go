package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFCMSendPayload(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"name":"projects/x/messages/1"}`))
	}))
	defer srv.Close()

	n := &FCMNotifier{client: srv.Client(), sendURL: srv.URL}
	if err := n.Send(context.Background(), "tok", "제목", "본문"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if got.Message.Token != "tok" {
		t.Errorf("token = %q", got.Message.Token)
	}
	if got.Message.Notification.Title != "제목" || got.Message.Notification.Body != "본문" {
		t.Errorf("notification = %+v", got.Message.Notification)
	}
	if got.Message.APNS.Payload.Aps.Sound != "default" {
		t.Errorf("aps sound = %q", got.Message.APNS.Payload.Aps.Sound)
	}
	if got.Message.APNS.Headers["apns-priority"] != "10" {
		t.Errorf("apns headers = %v", got.Message.APNS.Headers)
	}
}

func TestFCMSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"UNREGISTERED"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	n := &FCMNotifier{client: srv.Client(), sendURL: srv.URL}
	if err := n.Send(context.Background(), "tok", "t", "b"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestFCMSendEmptyToken(t *testing.T) {
	n := &FCMNotifier{}
	if err := n.Send(context.Background(), "", "t", "b"); err == nil {
		t.Fatal("expected error for empty token")
	}
}
