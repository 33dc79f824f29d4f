// Package config provides configuration management for Daybook.
//
// Configuration loads from a YAML file, gets defaults applied, then
// environment variable overrides, then validation. Environment variables
// follow the naming convention DAYBOOK_SECTION_FIELD, for example:
//
//   - DAYBOOK_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - DAYBOOK_PROVIDER_API_KEY overrides provider.api_key
//   - DAYBOOK_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file values.
//
// A minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	store:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "./daybook.db"
//
//	provider:
//	  api_key: "${OPENAI_API_KEY}"
//
//	auth:
//	  secret: "${DAYBOOK_AUTH_SECRET}"
//
// The limits.rules list can be hot reloaded at runtime via Watcher; invalid
// replacement rule lists are rejected and the running rules stay in force.
package config
