package models

// FetchResponse is returned by the remote side for a collection read.
// A response with Success=false is treated as a pull failure for that
// collection only.
type FetchResponse struct {
	// Success reports whether the remote side produced the collection.
	Success bool `json:"success"`

	// Data is the remote copy of the collection.
	Data []Record `json:"data"`

	// Error is an optional human readable reason when Success is false.
	Error string `json:"error,omitempty"`
}

// SendResponse is returned by the remote side after applying a mutation.
// A response with Success=false is a push failure; the item stays queued.
type SendResponse struct {
	// Success reports whether the mutation was applied (or had already
	// been applied before).
	Success bool `json:"success"`

	// Duplicate is true when the mutation id had been applied earlier.
	Duplicate bool `json:"duplicate,omitempty"`

	// Error is an optional human readable reason when Success is false.
	Error string `json:"error,omitempty"`
}

// StatusResponse describes the local sync engine for the client API.
type StatusResponse struct {
	State       SyncState    `json:"state"`
	Pending     int          `json:"pending"`
	Collections []string     `json:"collections"`
	Build       AppBuildInfo `json:"build"`
}
