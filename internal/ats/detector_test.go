package ats

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/leadhound/internal/models"
)

// memoryCache is an in-memory ATSCacheStorage for detector tests.
type memoryCache struct {
	entries map[string]*models.ATSCacheEntry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*models.ATSCacheEntry)}
}

func (c *memoryCache) Lookup(ctx context.Context, domain string) (*models.ATSCacheEntry, error) {
	entry, ok := c.entries[domain]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, nil
	}
	return entry, nil
}

func (c *memoryCache) Store(ctx context.Context, entry *models.ATSCacheEntry) error {
	c.entries[entry.Domain] = entry
	return nil
}

func (c *memoryCache) Purge(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestDetector(server *httptest.Server, cache *memoryCache) *Detector {
	client := testClient(server)
	if cache == nil {
		return NewDetector(client, client, nil, 7*24*time.Hour, testLogger())
	}
	return NewDetector(client, client, cache, 7*24*time.Hour, testLogger())
}

func TestDetector_APIProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "api.greenhouse.io" && r.URL.Path == "/v1/boards/acme/jobs" {
			fmt.Fprint(w, `{"jobs":[{"id":1}]}`)
			return
		}
		if r.Host == "acme.com" {
			fmt.Fprint(w, `<html><body>Welcome</body></html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := newMemoryCache()
	detector := newTestDetector(server, cache)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	assert.Equal(t, "greenhouse", result.Provider)
	assert.Equal(t, "acme", result.BoardToken)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, models.DetectionAPIProbe, result.DetectionMethod)

	// Detection is memoized per domain
	require.Contains(t, cache.entries, "acme.com")
	assert.Equal(t, "greenhouse", cache.entries["acme.com"].Provider)
}

func TestDetector_CacheHit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("cache hit must not reach the network")
	}))
	defer server.Close()

	cache := newMemoryCache()
	cache.entries["acme.com"] = &models.ATSCacheEntry{
		Domain:     "acme.com",
		Provider:   "lever",
		BoardToken: "acme",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	detector := newTestDetector(server, cache)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	assert.Equal(t, "lever", result.Provider)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, models.DetectionCache, result.DetectionMethod)
}

func TestDetector_TechnologyHintWinsTie(t *testing.T) {
	// Both greenhouse and lever probes validate; the technologies hint
	// promotes lever past the default order
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Host == "api.greenhouse.io":
			fmt.Fprint(w, `{"jobs":[{"id":1}]}`)
		case r.Host == "api.lever.co":
			fmt.Fprint(w, `[{"id":"a"}]`)
		case r.Host == "acme.com":
			fmt.Fprint(w, `<html></html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	detector := newTestDetector(server, nil)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "Lever, HubSpot")
	require.NoError(t, err)
	assert.Equal(t, "lever", result.Provider)
}

func TestDetector_HomepageFingerprint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "acme.com" && r.URL.Path == "/" {
			fmt.Fprint(w, `<html><a href="https://jobs.lever.co/acme-corp">Careers</a></html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	detector := newTestDetector(server, nil)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	assert.Equal(t, "lever", result.Provider)
	assert.Equal(t, "acme-corp", result.BoardToken)
	assert.Equal(t, 0.85, result.Confidence)
	assert.Equal(t, models.DetectionHTMLFingerprint, result.DetectionMethod)
}

func TestDetector_CareersPageFingerprint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "acme.com" && r.URL.Path == "/careers" {
			fmt.Fprint(w, `<html><div class="lever-jobs-iframe"></div></html>`)
			return
		}
		if r.Host == "acme.com" && r.URL.Path == "/" {
			fmt.Fprint(w, `<html>Plain homepage</html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	detector := newTestDetector(server, nil)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	assert.Equal(t, "lever", result.Provider)
	// Fingerprint without a token capture
	assert.Equal(t, "", result.BoardToken)
	assert.Equal(t, 0.6, result.Confidence)
}

func TestDetector_HomepageSweepIsConcurrent(t *testing.T) {
	var (
		mu    sync.Mutex
		hosts = make(map[string]bool)
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hosts[r.Host] = true
		mu.Unlock()
		if r.Host == "acme.com" && r.URL.Path == "/" {
			fmt.Fprint(w, `<html><a href="https://jobs.lever.co/acme-corp">Careers</a></html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	detector := newTestDetector(server, nil)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)
	assert.Equal(t, "lever", result.Provider)

	// Both homepage variants are fetched in the same fan-out, even
	// though the bare domain alone decides the tier
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, hosts["www.acme.com"])
}

func TestDetector_CareersSweepPrefersEarlierURL(t *testing.T) {
	var (
		mu      sync.Mutex
		fetched = make(map[string]bool)
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fetched[r.Host+r.URL.Path] = true
		mu.Unlock()
		switch {
		case r.Host == "acme.com" && r.URL.Path == "/careers":
			fmt.Fprint(w, `<html><div class="lever-jobs-iframe"></div></html>`)
		case r.Host == "acme.com" && r.URL.Path == "/jobs":
			fmt.Fprint(w, `<html><div id="grnhse_app"></div></html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	detector := newTestDetector(server, nil)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	// Two URLs in the tier hit; the earlier one wins regardless of
	// which response lands first
	assert.Equal(t, "lever", result.Provider)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, fetched["acme.com/careers"])
	assert.True(t, fetched["acme.com/jobs"])
	assert.True(t, fetched["acme.com/join"])
}

func TestDetector_LinkedInFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "acme.com" && r.URL.Path == "/" {
			fmt.Fprint(w, `<html><a href="https://www.linkedin.com/company/acme-corp">LinkedIn</a></html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := newMemoryCache()
	detector := newTestDetector(server, cache)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	assert.Equal(t, models.ProviderLinkedInOnly, result.Provider)
	assert.Equal(t, "acme-corp", result.BoardToken)
	assert.Equal(t, 0.6, result.Confidence)
	assert.Equal(t, models.DetectionLinkedInFall, result.DetectionMethod)

	// Fallbacks are memoized too; the next run must not re-probe
	require.Contains(t, cache.entries, "acme.com")
	assert.Equal(t, models.ProviderLinkedInOnly, cache.entries["acme.com"].Provider)
	assert.Equal(t, "acme-corp", cache.entries["acme.com"].BoardToken)
}

func TestDetector_FallbackServedFromCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "acme.com" && r.URL.Path == "/" {
			fmt.Fprint(w, `<html><a href="https://www.linkedin.com/company/acme-corp">LinkedIn</a></html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache := newMemoryCache()
	detector := newTestDetector(server, cache)

	_, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	server.Close()
	quiet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("cached fallback must not reach the network")
	}))
	defer quiet.Close()

	result, err := newTestDetector(quiet, cache).Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLinkedInOnly, result.Provider)
	assert.Equal(t, "acme-corp", result.BoardToken)
	assert.Equal(t, models.DetectionCache, result.DetectionMethod)
}

func TestDetector_DefaultFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	detector := newTestDetector(server, nil)

	result, err := detector.Detect(context.Background(), "Acme", "acme.com", "")
	require.NoError(t, err)

	assert.Equal(t, models.ProviderLinkedInOnly, result.Provider)
	assert.Equal(t, "", result.BoardToken)
	assert.Equal(t, 0.3, result.Confidence)
	assert.Equal(t, models.DetectionDefaultFall, result.DetectionMethod)
}
