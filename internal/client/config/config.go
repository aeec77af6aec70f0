package config

import (
	"time"

	"github.com/dmitrijs2005/eventfeed/internal/common"
)

// Config holds runtime settings for the eventfeed CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - PushURL: websocket URL of the live update channel.
//   - DatabaseFile: local SQLite file holding the session.
//   - PageSize: events requested per page.
//   - RequestTimeout: per-call deadline for backend requests.
type Config struct {
	ServerEndpointAddr string
	PushURL            string
	DatabaseFile       string
	PageSize           int
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.PushURL = "ws://127.0.0.1:8081/ws"
	c.DatabaseFile = "eventfeed.db"
	c.PageSize = common.DefaultPageSize
	c.RequestTimeout = 12 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
