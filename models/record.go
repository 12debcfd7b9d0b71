// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

const (
	// FieldID is the record field that identifies a record within its collection.
	FieldID = "id"

	// FieldSynced is the record field set to true once the record is known
	// to be present on the remote side.
	FieldSynced = "synced"
)

// Record is one domain record of a collection (a customer, an order, ...).
// It is a generic map from field name to value; the only field the sync
// engine interprets is "id" and the bookkeeping flag "synced".
type Record map[string]any

// ID returns the canonical string form of the record id and whether the
// record carries one. Numeric ids are normalised so that 1, 1.0 and "1"
// address the same record.
func (r Record) ID() (string, bool) {
	v, ok := r[FieldID]
	if !ok || v == nil {
		return "", false
	}

	id := canonicalID(v)
	if id == "" {
		return "", false
	}
	return id, true
}

// Synced reports whether the record is flagged as confirmed remotely.
func (r Record) Synced() bool {
	synced, _ := r[FieldSynced].(bool)
	return synced
}

// Clone returns a shallow copy of the record. Field values are shared,
// the map itself is not.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func canonicalID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		if f, err := id.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint32:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

// Snapshot is the locally materialised, merged view of one collection.
// Order is significant: local records keep their position and records
// first seen remotely are appended.
type Snapshot []Record

// Value implements [driver.Valuer]; snapshots are stored as JSON text.
func (s Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return string(b), nil
}

// Scan implements [sql.Scanner] for JSON text or blob columns.
func (s *Snapshot) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Snapshot{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedScanType, src)
	}

	var out Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if out == nil {
		out = Snapshot{}
	}
	*s = out
	return nil
}

// ErrUnsupportedScanType is returned by Scan implementations when the
// database driver hands over a value of an unexpected Go type.
var ErrUnsupportedScanType = errors.New("unsupported scan source type")
