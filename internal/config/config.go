// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// client daemon and the reference cloud server. It is populated by merging
// defaults, environment variables, command-line flags and an optional JSON
// file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds secrets and token parameters.
	App App `envPrefix:"APP_"`

	// Storage holds the database settings. The client uses a SQLite file,
	// the server a PostgreSQL DSN.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listen addresses of the reference cloud server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the client's view of the remote collaborator.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds scheduling intervals of the client daemon.
	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds the reconciliation policy of the client daemon.
	Sync Sync `envPrefix:"SYNC_"`

	// LocalAPI holds the listen address of the client's local HTTP API.
	LocalAPI LocalAPI `envPrefix:"LOCAL_API_"`

	// Log holds log output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level secrets.
type App struct {
	// HashKey is the HMAC key used for request integrity checking
	// (the HashSHA256 header).
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// TokenSignKey signs and verifies device JWT tokens (server only).
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim of issued tokens (server only).
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is the lifetime of issued tokens (server only).
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Devices lists device ids the server issues tokens for at startup.
	// Env: APP_DEVICES (comma separated)
	Devices []string `env:"DEVICES"`
}

// Storage groups the configuration for storage backends.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is a SQLite file path on the client (":memory:" selects the
	// non-durable in-memory store) or a PostgreSQL URL on the server.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds network and timeout settings for the reference server.
type Server struct {
	// HTTPAddress is the "host:port" the HTTP API listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the "host:port" the gRPC health service listens on.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds the client transport settings.
type Adapter struct {
	// HTTPAddress is the base address of the remote HTTP API.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the remote gRPC health endpoint. When set, the
	// connectivity monitor probes it instead of the HTTP ping route.
	// Env: ADAPTER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds every outbound request. Hung remote calls are
	// cut here, not in the sync engine.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token presented to the remote API.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds the client scheduling intervals.
type Workers struct {
	// SyncInterval is the period of the periodic sync trigger.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// StartupDelay is the delay of the one-shot initial sync.
	// Env: WORKERS_STARTUP_DELAY
	StartupDelay time.Duration `env:"STARTUP_DELAY"`

	// ProbeInterval is the period of the connectivity probe.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`
}

// Sync holds the reconciliation policy.
type Sync struct {
	// Collections lists the collection names pulled on every cycle.
	// Env: SYNC_COLLECTIONS (comma separated)
	Collections []string `env:"COLLECTIONS"`

	// ConflictPolicy selects the merge tie-break: "remote-wins",
	// "local-wins" or "newest-wins".
	// Env: SYNC_CONFLICT_POLICY
	ConflictPolicy string `env:"CONFLICT_POLICY"`

	// TimestampField is the record field compared by "newest-wins".
	// Env: SYNC_TIMESTAMP_FIELD
	TimestampField string `env:"TIMESTAMP_FIELD"`

	// BackoffBase enables exponential retry backoff for failed queue items
	// when non-zero.
	// Env: SYNC_BACKOFF_BASE
	BackoffBase time.Duration `env:"BACKOFF_BASE"`

	// BackoffMax caps a single backoff window.
	// Env: SYNC_BACKOFF_MAX
	BackoffMax time.Duration `env:"BACKOFF_MAX"`
}

// LocalAPI holds the client's local HTTP API settings.
type LocalAPI struct {
	// Address is the "host:port" of the local API. Empty disables it.
	// Env: LOCAL_API_ADDRESS
	Address string `env:"ADDRESS"`
}

// Log holds log output settings.
type Log struct {
	// Level is a zerolog level name ("debug", "info", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`

	// File is the path of the rotating client log file. Empty logs to stdout.
	// Env: LOG_FILE
	File string `env:"FILE"`

	// MaxSizeMB is the size at which the log file is rotated.
	// Env: LOG_MAX_SIZE_MB
	MaxSizeMB int `env:"MAX_SIZE_MB"`

	// MaxBackups is the number of rotated files kept.
	// Env: LOG_MAX_BACKUPS
	MaxBackups int `env:"MAX_BACKUPS"`

	// MaxAgeDays is the age after which rotated files are removed.
	// Env: LOG_MAX_AGE_DAYS
	MaxAgeDays int `env:"MAX_AGE_DAYS"`
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (last source wins
// for non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags().
		withJSON().
		build()
}
