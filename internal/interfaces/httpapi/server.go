package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"moonwatch/internal/application/usecase/alert"
)

// Server exposes the alert registration endpoint.
type Server struct {
	registry *alert.Registry
	srv      *http.Server
}

func New(addr string, registry *alert.Registry) *Server {
	s := &Server{registry: registry}
	mux := http.NewServeMux()
	mux.HandleFunc("/alerts", s.handleAlerts)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type alertRequest struct {
	Exchange  string  `json:"exchange"`
	Coin      string  `json:"coin"`
	Price     float64 `json:"price"`
	Condition string  `json:"condition"`
	FCMToken  string  `json:"fcmToken"`
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "잘못된 요청 본문"})
		return
	}
	if req.Exchange == "" || req.Coin == "" || req.Price == 0 || req.Condition == "" || req.FCMToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "필수 파라미터 누락"})
		return
	}

	a, err := s.registry.Register(alert.Alert{
		Exchange:  req.Exchange,
		Symbol:    req.Coin,
		Threshold: req.Price,
		Direction: alert.Direction(req.Condition),
		Token:     req.FCMToken,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": registrationError(err)})
		return
	}

	log.Info().
		Str("alert", a.ID).
		Str("exchange", a.Exchange).
		Str("coin", a.Symbol).
		Str("condition", string(a.Direction)).
		Float64("price", a.Threshold).
		Msg("alert registered")

	writeJSON(w, http.StatusCreated, map[string]string{"message": "알림이 성공적으로 등록되었습니다."})
}

func registrationError(err error) string {
	switch {
	case errors.Is(err, alert.ErrBadDirection):
		return "condition은 'above' 또는 'below'이어야 합니다."
	case errors.Is(err, alert.ErrBadThreshold):
		return "price는 0보다 커야 합니다."
	default:
		return "필수 파라미터 누락"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
