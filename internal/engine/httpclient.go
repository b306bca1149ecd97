package engine

import (
	"errors"
	"net/http"
	"time"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot = "FlavrCollector/1.0 (+https://github.com/anatolykoptev/go_flavr)"
)

// NewHTTPClient returns the pooled client shared by every source adapter.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}
