package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// NewESClient creates an Elasticsearch client with optional basic auth.
// It returns nil, nil when no addresses are configured.
func NewESClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   4,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	cfg.RetryOnStatus = []int{502, 503, 504}
	cfg.MaxRetries = 2
	return elasticsearch.NewClient(cfg)
}
