package service

import (
	"sync"
	"testing"

	"github.com/MKhiriev/go-offline-sync/internal/events"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// eventRecorder collects every event emitted on a real bus.
type eventRecorder struct {
	*events.Bus

	mu     sync.Mutex
	events []models.Event
}

func newEventRecorder(t *testing.T) *eventRecorder {
	t.Helper()
	r := &eventRecorder{Bus: events.NewBus(logger.Nop())}
	r.Subscribe(func(e models.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

func (r *eventRecorder) all() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

func (r *eventRecorder) kinds() []models.EventKind {
	var out []models.EventKind
	for _, e := range r.all() {
		out = append(out, e.Kind)
	}
	return out
}

func (r *eventRecorder) last(kind models.EventKind) (models.Event, bool) {
	all := r.all()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Kind == kind {
			return all[i], true
		}
	}
	return models.Event{}, false
}
