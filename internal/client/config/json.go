package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eventfeed/internal/flagx"
	"github.com/dmitrijs2005/eventfeed/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "3s" style strings or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	PushURL            string         `json:"push_url"`
	DatabaseFile       string         `json:"database_file"`
	PageSize           int            `json:"page_size"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with the non-empty values of the JSON file named
// by -c or -config. Read and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.PushURL != "" {
		cfg.PushURL = jc.PushURL
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
