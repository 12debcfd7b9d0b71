// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-offline-sync/models"
)

const (
	queueTable    = "sync_queue"
	snapshotTable = "snapshots"
)

// timeLayout is the text format of every timestamp kept in SQLite.
const timeLayout = time.RFC3339Nano

var queueColumns = []string{
	"id",
	"payload",
	"created_at",
	"attempts",
	"last_attempt_at",
	"last_error",
}

func buildInsertQueueItemQuery(b sq.StatementBuilderType, item models.QueueItem) (string, []any, error) {
	return b.Insert(queueTable).
		Columns("id", "payload", "created_at", "attempts").
		Values(item.ID, item.Payload, item.Timestamp.UTC().Format(timeLayout), item.Attempts).
		ToSql()
}

func buildListQueueQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select(queueColumns...).
		From(queueTable).
		OrderBy("seq ASC").
		ToSql()
}

func buildDeleteQueueItemQuery(b sq.StatementBuilderType, id string) (string, []any, error) {
	return b.Delete(queueTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildMarkFailedQuery(b sq.StatementBuilderType, id string, at time.Time, reason string) (string, []any, error) {
	return b.Update(queueTable).
		Set("attempts", sq.Expr("attempts + 1")).
		Set("last_attempt_at", at.UTC().Format(timeLayout)).
		Set("last_error", reason).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildCountQueueQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select("COUNT(*)").
		From(queueTable).
		ToSql()
}

func buildGetSnapshotQuery(b sq.StatementBuilderType, collection string) (string, []any, error) {
	return b.Select("records").
		From(snapshotTable).
		Where(sq.Eq{"collection": collection}).
		ToSql()
}

func buildPutSnapshotQuery(b sq.StatementBuilderType, collection string, snapshot models.Snapshot, at time.Time) (string, []any, error) {
	return b.Insert(snapshotTable).
		Columns("collection", "records", "updated_at").
		Values(collection, snapshot, at.UTC().Format(timeLayout)).
		Suffix("ON CONFLICT(collection) DO UPDATE SET records = excluded.records, updated_at = excluded.updated_at").
		ToSql()
}
