package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"moonwatch/internal/application/port"
)

// Repo is the trigger journal: one append-only row per fired alert.
type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS triggers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  alert_id TEXT NOT NULL,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  direction TEXT NOT NULL,
  threshold REAL NOT NULL,
  price REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_triggers_ts ON triggers(ts_ms);
CREATE INDEX IF NOT EXISTS idx_triggers_key ON triggers(exchange, symbol);
`)
	return err
}

func (r *Repo) InsertTrigger(ctx context.Context, alertID, exchange, symbol, direction string, threshold, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO triggers(alert_id, exchange, symbol, direction, threshold, price, ts_ms, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, alertID, exchange, symbol, direction, threshold, price, ts, time.Now().UnixMilli())
	return err
}

// listTriggers returns the most recent journal rows, newest first.
// Only the tests read the journal back; the production surface is
// append-only.
func (r *Repo) listTriggers(ctx context.Context, limit int) ([]map[string]interface{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT alert_id, exchange, symbol, direction, threshold, price, ts_ms
		FROM triggers ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var alertID, exchange, symbol, direction string
		var threshold, price float64
		var ts int64
		if err := rows.Scan(&alertID, &exchange, &symbol, &direction, &threshold, &price, &ts); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"alert_id":  alertID,
			"exchange":  exchange,
			"symbol":    symbol,
			"direction": direction,
			"threshold": threshold,
			"price":     price,
			"ts_ms":     ts,
		})
	}
	return out, rows.Err()
}

var _ port.Repository = (*Repo)(nil)
