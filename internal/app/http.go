package app

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// newLLMHTTPClient returns the HTTP client used for completion calls. An
// explicit proxy applies to both schemes; otherwise the usual HTTP(S)_PROXY and
// NO_PROXY variables are honoured. A zero timeout leaves calls unbounded.
func newLLMHTTPClient(timeout time.Duration, proxy string) (*http.Client, error) {
	pcfg := httpproxy.FromEnvironment()
	if p := strings.TrimSpace(proxy); p != "" {
		if _, err := url.Parse(p); err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		pcfg = &httpproxy.Config{HTTPProxy: p, HTTPSProxy: p, NoProxy: pcfg.NoProxy}
	}
	proxyFunc := pcfg.ProxyFunc()

	transport := &http.Transport{
		Proxy: func(r *http.Request) (*url.URL, error) {
			return proxyFunc(r.URL)
		},
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
