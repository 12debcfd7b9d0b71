// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

func newTestAdapter(t *testing.T, serverURL string) *HTTPRemoteAdapter {
	t.Helper()
	adapterCfg := config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: 2 * time.Second, Token: "device-token"}
	appCfg := config.ClientApp{HashKey: "testhashkey"}

	a, err := NewHTTPRemoteAdapter(adapterCfg, appCfg, logger.Nop())
	require.NoError(t, err)
	return a
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	_, err := utils.WriteJSON(w, v, status)
	require.NoError(t, err)
}

// ── Fetch ──

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/collections/customers", r.URL.Path)
		assert.Equal(t, "Bearer device-token", r.Header.Get("Authorization"))

		writeJSON(t, w, http.StatusOK, models.FetchResponse{
			Success: true,
			Data:    []models.Record{{"id": 1, "name": "B"}, {"id": 2, "name": "C"}},
		})
	}))
	defer srv.Close()

	records, err := newTestAdapter(t, srv.URL).Fetch(context.Background(), "customers")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "B", records[0]["name"])

	id, ok := records[0].ID()
	require.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestFetch_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	records, err := newTestAdapter(t, srv.URL).Fetch(context.Background(), "orders")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetch_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.FetchResponse{Success: false, Error: "maintenance"})
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL).Fetch(context.Background(), "orders")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemoteRejected)
	assert.Contains(t, err.Error(), "maintenance")
}

func TestFetch_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusBadRequest, want: ErrBadRequest},
		{status: http.StatusUnauthorized, want: ErrUnauthorized},
		{status: http.StatusForbidden, want: ErrForbidden},
		{status: http.StatusNotFound, want: ErrNotFound},
		{status: http.StatusConflict, want: ErrConflict},
		{status: http.StatusInternalServerError, want: ErrInternalServerError},
		{status: http.StatusServiceUnavailable, want: ErrUnavailable},
		{status: http.StatusTooManyRequests, want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := newTestAdapter(t, srv.URL).Fetch(context.Background(), "orders")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetch_UnknownStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := newTestAdapter(t, srv.URL).Fetch(context.Background(), "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 418")
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a, err := NewHTTPRemoteAdapter(config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: 50 * time.Millisecond}, config.ClientApp{}, logger.Nop())
	require.NoError(t, err)

	start := time.Now()
	_, err = a.Fetch(context.Background(), "orders")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

// ── Send ──

func TestSend_Success(t *testing.T) {
	item := models.QueueItem{
		ID:        "0190a3c4-0000-7000-8000-000000000001",
		Payload:   models.Mutation{Collection: "orders", Action: models.ActionUpsert, Record: models.Record{"id": "7", "total": 10.5}},
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/mutations", r.URL.Path)
		assert.Equal(t, item.ID, r.Header.Get(IdempotencyKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.True(t, utils.NewHasher("testhashkey").Verify(body, r.Header.Get(utils.HashHeader)))

		var got models.QueueItem
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, item.Payload.Collection, got.Payload.Collection)
		assert.Equal(t, 10.5, got.Payload.Record["total"])

		writeJSON(t, w, http.StatusOK, models.SendResponse{Success: true})
	}))
	defer srv.Close()

	require.NoError(t, newTestAdapter(t, srv.URL).Send(context.Background(), item))
}

func TestSend_DuplicateIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.SendResponse{Success: true, Duplicate: true})
	}))
	defer srv.Close()

	err := newTestAdapter(t, srv.URL).Send(context.Background(), models.QueueItem{ID: "a"})
	assert.NoError(t, err)
}

func TestSend_NoHashWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(utils.HashHeader))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, models.SendResponse{Success: true})
	}))
	defer srv.Close()

	a, err := NewHTTPRemoteAdapter(config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: time.Second}, config.ClientApp{}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, a.Send(context.Background(), models.QueueItem{ID: "a"}))
}

func TestSend_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.SendResponse{Success: false})
	}))
	defer srv.Close()

	err := newTestAdapter(t, srv.URL).Send(context.Background(), models.QueueItem{ID: "a"})
	assert.ErrorIs(t, err, ErrRemoteRejected)
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestAdapter(t, srv.URL).Send(context.Background(), models.QueueItem{ID: "a"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

// ── Ping ──

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	a := newTestAdapter(t, srv.URL)
	require.NoError(t, a.Ping(context.Background()))

	srv.Close()
	assert.Error(t, a.Ping(context.Background()))
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty", raw: "  ", wantErr: true},
		{name: "no scheme", raw: "localhost:8080", want: "http://localhost:8080"},
		{name: "trailing slash", raw: "https://cloud.local/", want: "https://cloud.local"},
		{name: "no host", raw: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
