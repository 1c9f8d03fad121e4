package httpclient

import (
	"net/http"
	"time"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewProbeClient creates the short-timeout client used for ATS API
// probes and careers-page fingerprint sweeps. Probes fan out across
// many candidate tokens, so a miss has to fail fast.
func NewProbeClient() *http.Client {
	return &http.Client{
		Timeout: 3 * time.Second,
	}
}

// NewCareersClient creates the client for careers-page HTML fetches.
func NewCareersClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
	}
}

// NewNoRedirectClient creates a probe client that reports redirects
// instead of following them. The redirect target is the detection
// signal for boards that bounce to a hosted ATS.
func NewNoRedirectClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
