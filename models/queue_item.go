// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MutationAction names the kind of change a queued mutation carries.
type MutationAction string

const (
	// ActionUpsert creates the record or overwrites the fields it lists.
	ActionUpsert MutationAction = "upsert"

	// ActionDelete removes the record with the given id.
	ActionDelete MutationAction = "delete"
)

// Mutation is the body of an outbound change. The sync engine treats it as
// opaque; only the remote collaborator interprets it.
type Mutation struct {
	// Collection is the name of the collection the change applies to.
	Collection string `json:"collection"`

	// Action is either "upsert" or "delete".
	Action MutationAction `json:"action"`

	// Record holds the changed fields. For deletes only "id" is required.
	Record Record `json:"record"`
}

// Value implements [driver.Valuer]; mutations are stored as JSON text.
func (m Mutation) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode mutation: %w", err)
	}
	return string(b), nil
}

// Scan implements [sql.Scanner] for JSON text or blob columns.
func (m *Mutation) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedScanType, src)
	}

	if err := json.Unmarshal(raw, m); err != nil {
		return fmt.Errorf("decode mutation: %w", err)
	}
	return nil
}

// QueueItem is a durable record of one outbound mutation awaiting confirmed
// delivery. It stays in the queue from enqueue until the remote side
// acknowledges it; failures only bump Attempts.
type QueueItem struct {
	// ID is generated at enqueue time and doubles as the idempotency key
	// sent to the remote side.
	ID string `json:"id"`

	// Payload is the mutation body.
	Payload Mutation `json:"payload"`

	// Timestamp is the creation time, serialised as ISO-8601.
	Timestamp time.Time `json:"timestamp"`

	// Attempts counts failed sends.
	Attempts int `json:"attempts"`

	// LastAttemptAt is the time of the most recent failed send, if any.
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`

	// LastError holds the reason of the most recent failed send.
	LastError string `json:"last_error,omitempty"`
}
