package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient embeds *resty.Client so callers use the resty API directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client bound to baseURL whose requests are cut
// after timeout. Retries are left to the caller; resty's own retry is off.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &HTTPClient{Client: client}
}
