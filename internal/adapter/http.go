package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// IdempotencyKeyHeader carries the queue item id on mutation requests.
const IdempotencyKeyHeader = utils.IdempotencyKeyHeader

// HTTPRemoteAdapter is the REST client of the remote collaborator.
type HTTPRemoteAdapter struct {
	client *utils.HTTPClient
	hasher *utils.Hasher
	token  string

	logger *logger.Logger
}

// NewHTTPRemoteAdapter returns the REST implementation of [RemoteAdapter]
// and [Pinger]. Routes:
//
//	GET  /api/ping
//	GET  /api/collections/{collection}
//	POST /api/mutations
//
// When appCfg.HashKey is set, mutation bodies are signed in the HashSHA256
// header.
func NewHTTPRemoteAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (*HTTPRemoteAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &HTTPRemoteAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		hasher: utils.NewHasher(appCfg.HashKey),
		token:  strings.TrimSpace(adapterCfg.Token),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Fetch implements [RemoteAdapter].
func (h *HTTPRemoteAdapter) Fetch(ctx context.Context, collection string) ([]models.Record, error) {
	var body models.FetchResponse

	resp, err := h.authedRequest(ctx).
		SetPathParam("collection", collection).
		SetResult(&body).
		Get("/api/collections/{collection}")
	if err != nil {
		return nil, fmt.Errorf("fetch %s request: %w", collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}
	if !body.Success {
		return nil, fmt.Errorf("fetch %s: %w", collection, rejected(body.Error))
	}

	if body.Data == nil {
		return []models.Record{}, nil
	}
	return body.Data, nil
}

// Send implements [RemoteAdapter]. A duplicate acknowledgement counts as
// success.
func (h *HTTPRemoteAdapter) Send(ctx context.Context, item models.QueueItem) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode queue item %s: %w", item.ID, err)
	}

	var body models.SendResponse
	req := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(IdempotencyKeyHeader, item.ID).
		SetBody(payload).
		SetResult(&body)
	if sig := h.hasher.Sign(payload); sig != "" {
		req.SetHeader(utils.HashHeader, sig)
	}

	resp, err := req.Post("/api/mutations")
	if err != nil {
		return fmt.Errorf("send %s request: %w", item.ID, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return fmt.Errorf("send %s: %w", item.ID, err)
	}
	if !body.Success {
		return fmt.Errorf("send %s: %w", item.ID, rejected(body.Error))
	}

	if body.Duplicate {
		logger.FromContext(ctx).Debug().
			Str("func", "HTTPRemoteAdapter.Send").
			Str("id", item.ID).
			Msg("remote had already applied the mutation")
	}
	return nil
}

// Ping implements [Pinger].
func (h *HTTPRemoteAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/ping")
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}
	return mapHTTPError(resp)
}

func (h *HTTPRemoteAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if h.token != "" {
		req.SetAuthToken(h.token)
	}
	return req
}
