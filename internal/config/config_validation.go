// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// ConflictPolicies lists the accepted values of Sync.ConflictPolicy.
var ConflictPolicies = []string{"remote-wins", "local-wins", "newest-wins"}

// validate checks the merged [StructuredConfig]. Role-specific rules live in
// [ClientConfig.validate] and [ServerConfig.validate].
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.ConflictPolicy != "" && !isKnownPolicy(cfg.Sync.ConflictPolicy) {
		return fmt.Errorf("%w: unknown conflict policy %q", ErrInvalidSyncConfigs, cfg.Sync.ConflictPolicy)
	}
	return nil
}

func (cfg *ClientConfig) validate() error {
	if strings.TrimSpace(cfg.Storage.DB.DSN) == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.StartupDelay < 0 || cfg.Workers.ProbeInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}
	if len(cfg.Sync.Collections) == 0 || !isKnownPolicy(cfg.Sync.ConflictPolicy) {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.BackoffMax > 0 && cfg.Sync.BackoffMax < cfg.Sync.BackoffBase {
		return fmt.Errorf("%w: backoff max is lower than backoff base", ErrInvalidSyncConfigs)
	}
	return nil
}

func (cfg *ServerConfig) validate() error {
	if strings.TrimSpace(cfg.Storage.DB.DSN) == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Server.HTTPAddress == "" && cfg.Server.GRPCAddress == "" {
		return ErrInvalidServerConfigs
	}
	if cfg.App.TokenSignKey != "" && (cfg.App.TokenIssuer == "" || cfg.App.TokenDuration <= 0) {
		return ErrInvalidAppConfigs
	}
	return nil
}

func isKnownPolicy(policy string) bool {
	for _, p := range ConflictPolicies {
		if p == policy {
			return true
		}
	}
	return false
}
