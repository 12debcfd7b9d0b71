package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// value returns the value of the series name whose labels include want.
func value(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("series %s %v not found", name, want)
	return 0
}

func TestWithPrometheus_NamespaceConvertsDots(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "offline.client")
	c.Observe(models.Event{Kind: models.EventOnline, Payload: models.EmptyPayload{}})

	assert.Equal(t, 1.0, value(t, reg, "offline_client_sync_online", nil))
}

func TestCollector_CycleLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")
	clock := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Observe(models.Event{Kind: models.EventSyncStart, Payload: models.EmptyPayload{}})
	assert.Equal(t, 1.0, value(t, reg, "test_sync_in_progress", nil))

	clock = clock.Add(2 * time.Second)
	c.Observe(models.Event{Kind: models.EventSyncComplete, Payload: models.CompletePayload{Success: true, Pulled: 3, Pushed: 2, Failed: 1, Skipped: 4}})

	assert.Equal(t, 0.0, value(t, reg, "test_sync_in_progress", nil))
	assert.Equal(t, 1.0, value(t, reg, "test_sync_cycles_total", map[string]string{"result": "success"}))
	assert.Equal(t, 3.0, value(t, reg, "test_sync_items_total", map[string]string{"outcome": "pulled"}))
	assert.Equal(t, 2.0, value(t, reg, "test_sync_items_total", map[string]string{"outcome": "pushed"}))
	assert.Equal(t, 1.0, value(t, reg, "test_sync_items_total", map[string]string{"outcome": "failed"}))
	assert.Equal(t, 4.0, value(t, reg, "test_sync_items_total", map[string]string{"outcome": "skipped"}))
	assert.Equal(t, 1.0, value(t, reg, "test_sync_cycle_duration_seconds", nil))
	assert.Equal(t, float64(clock.Unix()), value(t, reg, "test_sync_last_success_timestamp_seconds", nil))

	c.Observe(models.Event{Kind: models.EventSyncStart, Payload: models.EmptyPayload{}})
	c.Observe(models.Event{Kind: models.EventSyncError, Payload: models.ErrorPayload{Error: "boom"}})
	assert.Equal(t, 1.0, value(t, reg, "test_sync_cycles_total", map[string]string{"result": "error"}))
	assert.Equal(t, 2.0, value(t, reg, "test_sync_events_total", map[string]string{"kind": "sync-start"}))
}

func TestCollector_QueueAndConnectivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")

	c.Observe(models.Event{Kind: models.EventQueueUpdated, Payload: models.QueuePayload{Count: 7}})
	c.Observe(models.Event{Kind: models.EventOnline, Payload: models.EmptyPayload{}})
	assert.Equal(t, 7.0, value(t, reg, "test_sync_queue_length", nil))
	assert.Equal(t, 1.0, value(t, reg, "test_sync_online", nil))

	c.Observe(models.Event{Kind: models.EventOffline, Payload: models.EmptyPayload{}})
	assert.Equal(t, 0.0, value(t, reg, "test_sync_online", nil))
}

func TestCollector_SubscribedToBus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")
	bus := events.NewBus(logger.Nop())
	bus.Subscribe(c.Observe)

	bus.Emit(models.EventQueueUpdated, models.QueuePayload{Count: 2})

	assert.Equal(t, 2.0, value(t, reg, "test_sync_queue_length", nil))
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg, "test")
	c.Observe(models.Event{Kind: models.EventQueueUpdated, Payload: models.QueuePayload{Count: 5}})

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test_sync_queue_length 5")
}
