package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	recordsTable          = "records"
	appliedMutationsTable = "applied_mutations"
)

func buildListRecordsQuery(b sq.StatementBuilderType, collection string) (string, []any, error) {
	return b.Select("data").
		From(recordsTable).
		Where(sq.Eq{"collection": collection}).
		OrderBy("record_id ASC").
		ToSql()
}

func buildMarkAppliedQuery(b sq.StatementBuilderType, mutationID, collection string) (string, []any, error) {
	return b.Insert(appliedMutationsTable).
		Columns("id", "collection").
		Values(mutationID, collection).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
}

// buildUpsertRecordQuery merges the sent fields into the stored document,
// keeping fields the mutation does not mention.
func buildUpsertRecordQuery(b sq.StatementBuilderType, collection, recordID string, data []byte) (string, []any, error) {
	return b.Insert(recordsTable).
		Columns("collection", "record_id", "data", "updated_at").
		Values(collection, recordID, string(data), sq.Expr("NOW()")).
		Suffix("ON CONFLICT (collection, record_id) DO UPDATE SET data = records.data || EXCLUDED.data, updated_at = NOW()").
		ToSql()
}

func buildDeleteRecordQuery(b sq.StatementBuilderType, collection, recordID string) (string, []any, error) {
	return b.Delete(recordsTable).
		Where(sq.Eq{"collection": collection, "record_id": recordID}).
		ToSql()
}
