package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
)

// Default values applied before any other source.
const (
	DefaultSyncInterval   = 60 * time.Second
	DefaultStartupDelay   = 5 * time.Second
	DefaultProbeInterval  = 10 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	DefaultConflictPolicy = "remote-wins"
	DefaultTimestampField = "updatedAt"
	DefaultTokenDuration  = 30 * 24 * time.Hour
	DefaultTokenIssuer    = "go-offline-sync"
	DefaultBackoffMax     = 30 * time.Minute
)

// DefaultCollections are the collections synchronised when none are
// configured.
var DefaultCollections = []string{"customers", "maintenance", "orders"}

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, defaultConfig())
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	flagCfg, err := parseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flagCfg)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, jsonCfg)
	return b
}

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   DefaultTokenIssuer,
			TokenDuration: DefaultTokenDuration,
		},
		Server:  Server{RequestTimeout: DefaultRequestTimeout},
		Adapter: Adapter{RequestTimeout: DefaultRequestTimeout},
		Workers: Workers{
			SyncInterval:  DefaultSyncInterval,
			StartupDelay:  DefaultStartupDelay,
			ProbeInterval: DefaultProbeInterval,
		},
		Sync: Sync{
			Collections:    append([]string(nil), DefaultCollections...),
			ConflictPolicy: DefaultConflictPolicy,
			TimestampField: DefaultTimestampField,
		},
		Log: Log{
			Level:      "debug",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
