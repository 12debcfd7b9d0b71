// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Conflict policy names accepted by [NewConflictResolver].
const (
	PolicyRemoteWins = "remote-wins"
	PolicyLocalWins  = "local-wins"
	PolicyNewestWins = "newest-wins"
)

// ConflictResolver decides the fields of a record present both locally and
// remotely. Implementations must not modify their arguments and must be
// deterministic.
type ConflictResolver interface {
	Resolve(local, remote models.Record) models.Record
}

// ConflictResolverFunc adapts a function to [ConflictResolver].
type ConflictResolverFunc func(local, remote models.Record) models.Record

func (f ConflictResolverFunc) Resolve(local, remote models.Record) models.Record {
	return f(local, remote)
}

// RemoteWins overlays every remote field on the local record. Fields only the
// local record has are kept.
func RemoteWins() ConflictResolver {
	return ConflictResolverFunc(func(local, remote models.Record) models.Record {
		return overlay(local, remote)
	})
}

// LocalWins keeps every local field and takes from the remote record only the
// fields the local record lacks.
func LocalWins() ConflictResolver {
	return ConflictResolverFunc(func(local, remote models.Record) models.Record {
		return overlay(remote, local)
	})
}

// NewestWins compares the RFC 3339 timestamp stored in field. The local
// record wins only when its timestamp is strictly newer; ties and unparsable
// values go to the remote record.
func NewestWins(field string) ConflictResolver {
	return ConflictResolverFunc(func(local, remote models.Record) models.Record {
		lt, lok := recordTime(local, field)
		rt, rok := recordTime(remote, field)
		if lok && (!rok || lt.After(rt)) {
			return overlay(remote, local)
		}
		return overlay(local, remote)
	})
}

// NewConflictResolver maps a configured policy name to a resolver.
func NewConflictResolver(policy, timestampField string) (ConflictResolver, error) {
	switch policy {
	case "", PolicyRemoteWins:
		return RemoteWins(), nil
	case PolicyLocalWins:
		return LocalWins(), nil
	case PolicyNewestWins:
		if timestampField == "" {
			return nil, fmt.Errorf("%w: %s needs a timestamp field", ErrUnknownConflictPolicy, policy)
		}
		return NewestWins(timestampField), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConflictPolicy, policy)
	}
}

// Merge reconciles the local snapshot of a collection with the remote copy.
//
// Remote records whose id is known locally are resolved against the local
// record; new ids are appended in remote order. Both are flagged synced.
// Local records absent remotely are kept unchanged, remote records without an
// id are dropped and a repeated remote id resolves to its last occurrence.
// Every remote record is resolved against the original local record, so the
// result does not depend on the order of remote.
//
// Merge does not modify its inputs.
func Merge(local models.Snapshot, remote []models.Record, resolver ConflictResolver) models.Snapshot {
	if resolver == nil {
		resolver = RemoteWins()
	}

	out := make(models.Snapshot, 0, len(local)+len(remote))
	base := make(map[string]models.Record, len(local))
	pos := make(map[string]int, len(local)+len(remote))

	for _, rec := range local {
		if id, ok := rec.ID(); ok {
			if _, seen := pos[id]; !seen {
				base[id] = rec
				pos[id] = len(out)
			}
		}
		out = append(out, rec.Clone())
	}

	for _, rec := range remote {
		id, ok := rec.ID()
		if !ok {
			continue
		}

		var merged models.Record
		if l, isLocal := base[id]; isLocal {
			merged = resolver.Resolve(l, rec)
		} else {
			merged = rec.Clone()
		}
		merged[models.FieldSynced] = true

		if i, seen := pos[id]; seen {
			out[i] = merged
			continue
		}
		pos[id] = len(out)
		out = append(out, merged)
	}

	return out
}

// overlay returns a copy of base with every field of top written over it.
func overlay(base, top models.Record) models.Record {
	out := base.Clone()
	for k, v := range top {
		out[k] = v
	}
	return out
}

func recordTime(r models.Record, field string) (time.Time, bool) {
	raw, ok := r[field].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
