package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// HashKey is the HMAC key used by the client for payload integrity checks.
	HashKey string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote HTTP endpoint address.
	HTTPAddress string
	// GRPCAddress is the remote gRPC health endpoint address.
	GRPCAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// Token is the bearer token presented to the remote API.
	Token string
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path used by the client.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the periodic sync trigger fires.
	SyncInterval time.Duration
	// StartupDelay defines when the one-shot initial sync fires.
	StartupDelay time.Duration
	// ProbeInterval defines how often connectivity is probed.
	ProbeInterval time.Duration
}

// ClientSync contains the reconciliation policy.
type ClientSync struct {
	Collections    []string
	ConflictPolicy string
	TimestampField string
	BackoffBase    time.Duration
	BackoffMax     time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App      ClientApp
	Adapter  ClientAdapter
	Storage  ClientStorage
	Workers  ClientWorkers
	Sync     ClientSync
	LocalAPI LocalAPI
	Log      Log
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the fields of cfg relevant to the client runtime.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			GRPCAddress:    cfg.Adapter.GRPCAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			SyncInterval:  cfg.Workers.SyncInterval,
			StartupDelay:  cfg.Workers.StartupDelay,
			ProbeInterval: cfg.Workers.ProbeInterval,
		},
		Sync: ClientSync{
			Collections:    cfg.Sync.Collections,
			ConflictPolicy: cfg.Sync.ConflictPolicy,
			TimestampField: cfg.Sync.TimestampField,
			BackoffBase:    cfg.Sync.BackoffBase,
			BackoffMax:     cfg.Sync.BackoffMax,
		},
		LocalAPI: cfg.LocalAPI,
		Log:      cfg.Log,
	}
}

// ServerConfig is the reference cloud server configuration.
type ServerConfig struct {
	App     App
	Storage Storage
	Server  Server
	Log     Log
}

// GetServerConfig builds and validates the server-specific config view.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := NewServerConfig(cfg)
	return serverCfg, serverCfg.validate()
}

// NewServerConfig maps the fields of cfg relevant to the reference server.
func NewServerConfig(cfg *StructuredConfig) *ServerConfig {
	return &ServerConfig{
		App:     cfg.App,
		Storage: cfg.Storage,
		Server:  cfg.Server,
		Log:     cfg.Log,
	}
}
