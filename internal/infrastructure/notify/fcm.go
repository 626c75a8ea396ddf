package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"moonwatch/internal/application/port"
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMNotifier delivers pushes through the FCM HTTP v1 API, authorized
// with a Firebase service-account key.
type FCMNotifier struct {
	client  *http.Client
	sendURL string
}

func NewFCM(ctx context.Context, credentialsFile, projectID string) (*FCMNotifier, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, messagingScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, errors.New("fcm project id is empty")
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = 10 * time.Second
	return &FCMNotifier{
		client:  client,
		sendURL: fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", projectID),
	}, nil
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type apnsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type apnsAps struct {
	Alert apnsAlert `json:"alert"`
	Sound string    `json:"sound"`
}

type apnsPayload struct {
	Aps apnsAps `json:"aps"`
}

type apnsConfig struct {
	Payload apnsPayload       `json:"payload"`
	Headers map[string]string `json:"headers"`
}

type fcmMessage struct {
	Token        string          `json:"token"`
	Notification fcmNotification `json:"notification"`
	APNS         apnsConfig      `json:"apns"`
}

type sendRequest struct {
	Message fcmMessage `json:"message"`
}

func (n *FCMNotifier) Send(ctx context.Context, token, title, body string) error {
	if token == "" {
		return errors.New("fcm token is empty")
	}

	payload := sendRequest{Message: fcmMessage{
		Token:        token,
		Notification: fcmNotification{Title: title, Body: body},
		APNS: apnsConfig{
			Payload: apnsPayload{Aps: apnsAps{
				Alert: apnsAlert{Title: title, Body: body},
				Sound: "default",
			}},
			Headers: map[string]string{
				"apns-priority":   "10",
				"apns-push-type":  "alert",
				"apns-expiration": "0",
				"apns-topic":      "com.tothemoon",
			},
		},
	}}

	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.sendURL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("fcm send: status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

var _ port.Notifier = (*FCMNotifier)(nil)
