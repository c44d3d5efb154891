package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns a pooled client shared by article fetching and the
// LLM client. Request deadlines come from the callers' contexts; Timeout is
// only a backstop.
func newHTTPClient(workers int) *http.Client {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          4 * workers,
		MaxIdleConnsPerHost:   workers,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}
