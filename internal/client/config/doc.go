// Package config loads runtime configuration for the eventfeed CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "push_url": "ws://127.0.0.1:8081/ws",
//	  "database_file": "eventfeed.db",
//	  "page_size": 10,
//	  "request_timeout": "5s"
//	}
package config
