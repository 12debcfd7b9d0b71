// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter talks to the remote collaborator that holds the cloud copy
// of every collection.
//
// [RemoteAdapter] is what the sync cycle needs: read a collection, deliver one
// queued mutation. [Pinger] is what the connectivity monitor needs. The HTTP
// implementation ([NewHTTPRemoteAdapter]) provides both; [NewGRPCHealthPinger]
// is an alternative probe against the standard gRPC health service.
//
// Transport failures are mapped to the sentinel errors in errors.go so callers
// can match them with [errors.Is].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// RemoteAdapter is the remote collaborator as seen by the sync cycle.
// Implementations enforce their own request timeout.
type RemoteAdapter interface {
	// Fetch returns the remote copy of collection. A response the remote
	// marks as unsuccessful is returned as [ErrRemoteRejected].
	Fetch(ctx context.Context, collection string) ([]models.Record, error)

	// Send delivers one queued mutation. item.ID is sent as the idempotency
	// key so a resend after a lost acknowledgement is harmless.
	Send(ctx context.Context, item models.QueueItem) error
}

// Pinger checks whether the remote collaborator is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
