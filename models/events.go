// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// EventKind enumerates the lifecycle events published by the sync engine.
type EventKind string

const (
	EventSyncStart    EventKind = "sync-start"
	EventSyncComplete EventKind = "sync-complete"
	EventSyncError    EventKind = "sync-error"
	EventQueueUpdated EventKind = "queue-updated"
	EventDataUpdated  EventKind = "data-updated"
	EventOnline       EventKind = "online"
	EventOffline      EventKind = "offline"
)

// EventPayload is the closed set of payload variants. Each EventKind has
// exactly one variant:
//
//	sync-start, online, offline -> EmptyPayload
//	sync-complete               -> CompletePayload
//	sync-error                  -> ErrorPayload
//	queue-updated               -> QueuePayload
//	data-updated                -> DataPayload
type EventPayload interface {
	eventPayload()
}

// EmptyPayload carries no data.
type EmptyPayload struct{}

// CompletePayload summarises a finished sync cycle.
type CompletePayload struct {
	Success bool `json:"success"`
	// Pulled is the number of collections merged successfully.
	Pulled int `json:"pulled"`
	// Pushed is the number of queue items delivered and removed.
	Pushed int `json:"pushed"`
	// Failed counts collections and items that failed and will be retried.
	Failed int `json:"failed"`
	// Skipped counts queue items still inside their backoff window.
	Skipped int `json:"skipped"`
}

// ErrorPayload carries the message of the error that aborted a cycle.
type ErrorPayload struct {
	Error string `json:"error"`
}

// QueuePayload carries the current number of pending queue items.
type QueuePayload struct {
	Count int `json:"count"`
}

// DataPayload carries the new snapshot of a collection after a merge.
type DataPayload struct {
	Collection string   `json:"module"`
	Data       Snapshot `json:"data"`
}

func (EmptyPayload) eventPayload()    {}
func (CompletePayload) eventPayload() {}
func (ErrorPayload) eventPayload()    {}
func (QueuePayload) eventPayload()    {}
func (DataPayload) eventPayload()     {}

// Event is one published notification.
type Event struct {
	Kind    EventKind    `json:"event"`
	Payload EventPayload `json:"payload"`
}

// SyncState is the process-wide state of the sync engine.
type SyncState struct {
	// Online mirrors the last known connectivity.
	Online bool `json:"online"`
	// SyncInProgress is true for the whole duration of a cycle.
	SyncInProgress bool `json:"sync_in_progress"`
}
