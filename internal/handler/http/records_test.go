// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

func queueItem(id string) models.QueueItem {
	return models.QueueItem{
		ID: id,
		Payload: models.Mutation{
			Collection: "orders",
			Action:     models.ActionUpsert,
			Record:     models.Record{"id": "o1", "status": "open"},
		},
		Timestamp: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
	}
}

func mutationRequest(t *testing.T, item models.QueueItem) *http.Request {
	t.Helper()
	body, err := json.Marshal(item)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/mutations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

// ── fetch ──

func TestFetchCollection(t *testing.T) {
	tests := []struct {
		name       string
		records    []models.Record
		err        error
		wantStatus int
		wantResp   models.FetchResponse
	}{
		{
			name:       "records returned",
			records:    []models.Record{{"id": "o1", "status": "open"}},
			wantStatus: http.StatusOK,
			wantResp:   models.FetchResponse{Success: true, Data: []models.Record{{"id": "o1", "status": "open"}}},
		},
		{
			name:       "empty collection",
			records:    []models.Record{},
			wantStatus: http.StatusOK,
			wantResp:   models.FetchResponse{Success: true, Data: []models.Record{}},
		},
		{
			name:       "invalid collection",
			err:        fmt.Errorf("%w: bad", service.ErrInvalidDataProvided),
			wantStatus: http.StatusBadRequest,
			wantResp:   models.FetchResponse{Error: "invalid data provided: bad"},
		},
		{
			name:       "storage failure",
			err:        fmt.Errorf("%w: boom", store.ErrExecutingQuery),
			wantStatus: http.StatusInternalServerError,
			wantResp:   models.FetchResponse{Error: "error executing sql query: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			f.auth.EXPECT().Enabled().Return(false)
			f.records.EXPECT().List(gomock.Any(), "orders").Return(tt.records, tt.err)

			rr := f.serve(httptest.NewRequest(http.MethodGet, "/api/collections/orders", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantResp, decode[models.FetchResponse](t, rr))
		})
	}
}

// ── apply ──

func TestApplyMutation(t *testing.T) {
	tests := []struct {
		name       string
		duplicate  bool
		err        error
		wantStatus int
		wantResp   models.SendResponse
	}{
		{name: "applied", wantStatus: http.StatusOK, wantResp: models.SendResponse{Success: true}},
		{name: "duplicate", duplicate: true, wantStatus: http.StatusOK, wantResp: models.SendResponse{Success: true, Duplicate: true}},
		{
			name:       "validation error",
			err:        fmt.Errorf("%w: missing record id", service.ErrInvalidDataProvided),
			wantStatus: http.StatusBadRequest,
			wantResp:   models.SendResponse{Error: "invalid data provided: missing record id"},
		},
		{
			name:       "transient storage error",
			err:        fmt.Errorf("apply: %w", store.ErrRetryable),
			wantStatus: http.StatusServiceUnavailable,
			wantResp:   models.SendResponse{Error: "apply: transient storage error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			item := queueItem("q-1")
			f.auth.EXPECT().Enabled().Return(false)
			f.records.EXPECT().Apply(gomock.Any(), item).Return(tt.duplicate, tt.err)

			rr := f.serve(mutationRequest(t, item))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantResp, decode[models.SendResponse](t, rr))
		})
	}
}

func TestApplyMutation_InvalidJSON(t *testing.T) {
	f := newFixture(t, "")
	f.auth.EXPECT().Enabled().Return(false)

	rr := f.serve(httptest.NewRequest(http.MethodPost, "/api/mutations", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, decode[models.SendResponse](t, rr).Success)
}

func TestApplyMutation_IdempotencyKeyFillsMissingID(t *testing.T) {
	f := newFixture(t, "")
	f.auth.EXPECT().Enabled().Return(false)
	f.records.EXPECT().
		Apply(gomock.Any(), gomock.Cond(func(item models.QueueItem) bool { return item.ID == "q-9" })).
		Return(false, nil)

	req := mutationRequest(t, queueItem(""))
	req.Header.Set(utils.IdempotencyKeyHeader, "q-9")
	rr := f.serve(req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestApplyMutation_IdempotencyKeyMismatch(t *testing.T) {
	f := newFixture(t, "")
	f.auth.EXPECT().Enabled().Return(false)

	req := mutationRequest(t, queueItem("q-1"))
	req.Header.Set(utils.IdempotencyKeyHeader, "q-2")
	rr := f.serve(req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrIdempotencyKeyMismatch.Error(), decode[models.SendResponse](t, rr).Error)
}

func TestApplyMutation_SignedBody(t *testing.T) {
	f := newFixture(t, "secret")
	item := queueItem("q-1")
	f.auth.EXPECT().Enabled().Return(false).Times(2)
	f.records.EXPECT().Apply(gomock.Any(), item).Return(false, nil)

	body, err := json.Marshal(item)
	require.NoError(t, err)

	signed := httptest.NewRequest(http.MethodPost, "/api/mutations", bytes.NewReader(body))
	signed.Header.Set(utils.HashHeader, utils.NewHasher("secret").Sign(body))
	assert.Equal(t, http.StatusOK, f.serve(signed).Code)

	unsigned := httptest.NewRequest(http.MethodPost, "/api/mutations", bytes.NewReader(body))
	assert.Equal(t, http.StatusBadRequest, f.serve(unsigned).Code)
}
