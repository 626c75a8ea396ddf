package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type ExchangeConfig struct {
	Enabled bool   `toml:"enabled"`
	WsURL   string `toml:"ws_url"`
	APIURL  string `toml:"api_url"`
}

type Config struct {
	App struct {
		HTTPAddr string `toml:"http_addr"`
		LogLevel string `toml:"log_level"`
	} `toml:"app"`

	Notify struct {
		ProjectID       string `toml:"project_id"`
		CredentialsFile string `toml:"credentials_file"`
		Title           string `toml:"title"`
	} `toml:"notify"`

	Storage struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"storage"`

	Exchanges map[string]ExchangeConfig `toml:"exchange"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config pointing at the public endpoints of all four
// exchanges, used when no config file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

var defaultExchanges = map[string]ExchangeConfig{
	"bithumb": {Enabled: true, WsURL: "wss://pubwss.bithumb.com/pub/ws", APIURL: "https://api.bithumb.com"},
	"upbit":   {Enabled: true, WsURL: "wss://api.upbit.com/websocket/v1", APIURL: "https://api.upbit.com"},
	"coinone": {Enabled: true, WsURL: "wss://stream.coinone.co.kr", APIURL: "https://api.coinone.co.kr"},
	"korbit":  {Enabled: true, WsURL: "wss://ws-api.korbit.co.kr/v2/ws", APIURL: "https://api.korbit.co.kr"},
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.App.HTTPAddr) == "" {
		cfg.App.HTTPAddr = ":3000"
	}
	if strings.TrimSpace(cfg.App.LogLevel) == "" {
		cfg.App.LogLevel = "info"
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = "data/moonwatch.db"
	}
	if cfg.Exchanges == nil {
		cfg.Exchanges = make(map[string]ExchangeConfig)
	}
	for name, def := range defaultExchanges {
		ex, ok := cfg.Exchanges[name]
		if !ok {
			cfg.Exchanges[name] = def
			continue
		}
		if strings.TrimSpace(ex.WsURL) == "" {
			ex.WsURL = def.WsURL
		}
		if strings.TrimSpace(ex.APIURL) == "" {
			ex.APIURL = def.APIURL
		}
		cfg.Exchanges[name] = ex
	}
}

func validate(cfg *Config) error {
	enabled := 0
	for name, ex := range cfg.Exchanges {
		if !ex.Enabled {
			continue
		}
		enabled++
		if strings.TrimSpace(ex.WsURL) == "" {
			return fmt.Errorf("exchange.%s.ws_url empty but enabled", name)
		}
		if strings.TrimSpace(ex.APIURL) == "" {
			return fmt.Errorf("exchange.%s.api_url empty but enabled", name)
		}
	}
	if enabled == 0 {
		return errors.New("no exchanges enabled")
	}
	return nil
}

// EnabledExchanges returns the enabled exchange names in stable order.
func (c *Config) EnabledExchanges() []string {
	order := []string{"bithumb", "upbit", "coinone", "korbit"}
	out := make([]string, 0, len(order))
	for _, name := range order {
		if ex, ok := c.Exchanges[name]; ok && ex.Enabled {
			out = append(out, name)
		}
	}
	for name, ex := range c.Exchanges {
		if ex.Enabled && !contains(order, name) {
			out = append(out, name)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
