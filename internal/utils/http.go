package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// IdempotencyKeyHeader carries the queue item id on mutation requests.
const IdempotencyKeyHeader = "Idempotency-Key"

// WriteJSON marshals data and writes it with statusCode and a JSON content
// type. A marshal failure is answered with 500 and returned.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}
