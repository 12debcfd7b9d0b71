package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// fakeRemote is a minimal remote collaborator recording delivered
// mutations.
type fakeRemote struct {
	mu        sync.Mutex
	mutations []models.QueueItem
}

func (f *fakeRemote) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})
	mux.HandleFunc("GET /api/collections/{collection}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.FetchResponse{Success: true, Data: []models.Record{{"id": "r1", "status": "remote"}}})
	})
	mux.HandleFunc("POST /api/mutations", func(w http.ResponseWriter, r *http.Request) {
		var item models.QueueItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.mutations = append(f.mutations, item)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SendResponse{Success: true})
	})
	return mux
}

func (f *fakeRemote) delivered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.mutations)
}

func testConfig(remoteURL string) *config.ClientConfig {
	return &config.ClientConfig{
		Adapter: config.ClientAdapter{HTTPAddress: remoteURL, RequestTimeout: time.Second},
		Storage: config.ClientStorage{DB: config.ClientDB{DSN: ":memory:"}},
		Workers: config.ClientWorkers{
			SyncInterval:  time.Hour,
			StartupDelay:  10 * time.Millisecond,
			ProbeInterval: time.Hour,
		},
		Sync: config.ClientSync{
			Collections:    []string{"orders"},
			ConflictPolicy: config.DefaultConflictPolicy,
		},
	}
}

func TestApp_StartupSyncDeliversQueuedEdits(t *testing.T) {
	remote := &fakeRemote{}
	srv := httptest.NewServer(remote.handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(srv.URL), models.NewAppBuildInfo("", "", ""), logger.Nop())
	require.NoError(t, err)
	defer app.Close()

	var kinds []models.EventKind
	var mu sync.Mutex
	app.Bus().Subscribe(func(e models.Event) {
		mu.Lock()
		kinds = append(kinds, e.Kind)
		mu.Unlock()
	})

	_, err = app.services.RecordService.Upsert(ctx, "orders", models.Record{"id": "o1", "status": "local"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return remote.delivered() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		n, err := app.services.QueueService.Count(ctx)
		return err == nil && n == 0
	}, 5*time.Second, 10*time.Millisecond)

	snapshot, err := app.services.RecordService.List(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, kinds, models.EventSyncStart)
	assert.Contains(t, kinds, models.EventSyncComplete)
}

func TestApp_OfflineAtStartSkipsSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	app, err := NewApp(ctx, testConfig(srv.URL), models.NewAppBuildInfo("", "", ""), logger.Nop())
	require.NoError(t, err)
	defer app.Close()

	var started bool
	app.Bus().Subscribe(func(e models.Event) {
		if e.Kind == models.EventSyncStart {
			started = true
		}
	})

	require.NoError(t, app.Run(ctx))
	assert.False(t, started)
	assert.False(t, app.services.SyncService.State().Online)
}

func TestNewApp_InvalidAdapterAddress(t *testing.T) {
	cfg := testConfig("")

	_, err := NewApp(context.Background(), cfg, models.NewAppBuildInfo("", "", ""), logger.Nop())

	assert.Error(t, err)
}
