package stream

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates an HTTP client suitable for long-lived
// streaming responses. There is deliberately no overall client
// timeout; a ceiling there would cut the stream off mid-ingestion.
// Connection setup is still bounded.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          2,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 40 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	transport.DialContext = (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext

	return &http.Client{
		Transport: transport,
	}
}
