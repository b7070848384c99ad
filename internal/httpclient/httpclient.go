package httpclient

import (
	"net/http"
	"time"

	"github.com/caffeinepub/zenlink-5/internal/logging"
)

// New returns an http.Client configured for outbound requests.
func New(timeout time.Duration, logger logging.Logger) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: Transport(),
	}
}

// Transport returns an http.Transport clone suitable for outbound calls.
func Transport() *http.Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{Proxy: http.ProxyFromEnvironment}
	}

	transport := base.Clone()
	transport.Proxy = http.ProxyFromEnvironment
	return transport
}
