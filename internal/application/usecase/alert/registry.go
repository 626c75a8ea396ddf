package alert

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"moonwatch/internal/application/port"
)

type key struct {
	exchange string
	symbol   string
}

// Trigger is the event of an alert's condition becoming satisfied.
type Trigger struct {
	Alert Alert
	Price float64
	Ts    int64
}

// Registry holds every pending alert, indexed by (exchange, symbol).
// Register and Match are called from concurrent goroutines (the HTTP
// handler and one consumer per exchange feed); a single mutex
// serializes all access so a satisfied alert is removed in the same
// critical section that observed it, which makes triggers at-most-once.
type Registry struct {
	mu     sync.Mutex
	alerts map[key][]Alert
}

func NewRegistry() *Registry {
	return &Registry{alerts: make(map[key][]Alert)}
}

// Register validates the alert, assigns an id and indexes it. The
// exchange is lower-cased before storage; the symbol is kept as
// provided.
func (r *Registry) Register(a Alert) (Alert, error) {
	a.Exchange = strings.ToLower(strings.TrimSpace(a.Exchange))
	if err := a.validate(); err != nil {
		return Alert{}, err
	}
	a.ID = uuid.NewString()

	k := key{exchange: a.Exchange, symbol: a.Symbol}
	r.mu.Lock()
	r.alerts[k] = append(r.alerts[k], a)
	r.mu.Unlock()
	return a, nil
}

// Match returns the alerts satisfied by the tick and removes them from
// the index atomically with the check.
func (r *Registry) Match(t port.Tick) []Trigger {
	k := key{exchange: t.Exchange, symbol: t.Symbol}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.alerts[k]
	if len(entries) == 0 {
		return nil
	}

	var triggered []Trigger
	remaining := entries[:0]
	for _, a := range entries {
		if a.satisfiedBy(t.PriceNum) {
			triggered = append(triggered, Trigger{Alert: a, Price: t.PriceNum, Ts: t.Ts})
			continue
		}
		remaining = append(remaining, a)
	}
	if len(remaining) == 0 {
		delete(r.alerts, k)
	} else {
		r.alerts[k] = remaining
	}
	return triggered
}

// Pending reports the number of alerts still waiting.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, entries := range r.alerts {
		n += len(entries)
	}
	return n
}
