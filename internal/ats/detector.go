package ats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// maxProbeBody bounds how much of a probe response is read for
// validation. Boards with hundreds of postings can return megabytes.
const maxProbeBody = 1 << 20

// Detector finds which ATS a company hires through.
//
// Detection order:
//  1. Cache lookup by domain
//  2. Concurrent API probes with generated token variations
//  3. Homepage HTML fingerprinting
//  4. Careers-page sweep (redirect targets, then fingerprints)
//  5. LinkedIn-only fallback
type Detector struct {
	probeClient *http.Client
	pageClient  *http.Client
	cache       interfaces.ATSCacheStorage
	cacheTTL    time.Duration
	logger      arbor.ILogger
}

// NewDetector creates a detector. cache may be nil to disable caching.
func NewDetector(probeClient, pageClient *http.Client, cache interfaces.ATSCacheStorage, cacheTTL time.Duration, logger arbor.ILogger) *Detector {
	return &Detector{
		probeClient: probeClient,
		pageClient:  pageClient,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Detect runs the full detection ladder for one company. It always
// returns a result; companies with no detectable ATS come back as
// linkedin_only with a fallback detection method.
func (d *Detector) Detect(ctx context.Context, companyName, domain, technologies string) (models.ATSDetectionResult, error) {
	if d.cache != nil {
		entry, err := d.cache.Lookup(ctx, domain)
		if err != nil {
			d.logger.Warn().Err(err).Str("domain", domain).Msg("ATS cache lookup failed")
		} else if entry != nil {
			return models.ATSDetectionResult{
				Provider:        entry.Provider,
				BoardToken:      entry.BoardToken,
				Confidence:      1.0,
				DetectionMethod: models.DetectionCache,
			}, nil
		}
	}

	d.logger.Debug().Str("company", companyName).Str("domain", domain).Msg("Detecting ATS")

	// The slug helps token generation and serves as the last fallback
	linkedinSlug := d.extractLinkedInSlug(ctx, domain)
	tokens := GenerateTokenVariations(companyName, domain, linkedinSlug)

	result := d.probeAll(ctx, tokens, technologies)
	if !result.Detected() {
		result = d.detectFromHomepage(ctx, domain)
	}
	if !result.Detected() {
		result = d.detectFromCareersPages(ctx, domain)
	}

	if !result.Detected() {
		// Fallbacks are cached too: re-running the ladder for a company
		// with no detectable ATS wastes the same probes every run
		if linkedinSlug != "" {
			result = models.ATSDetectionResult{
				Provider:        models.ProviderLinkedInOnly,
				BoardToken:      linkedinSlug,
				Confidence:      0.6,
				DetectionMethod: models.DetectionLinkedInFall,
			}
		} else {
			result = models.ATSDetectionResult{
				Provider:        models.ProviderLinkedInOnly,
				Confidence:      0.3,
				DetectionMethod: models.DetectionDefaultFall,
			}
		}
	}

	d.storeCache(ctx, domain, result)
	return result, nil
}

func (d *Detector) storeCache(ctx context.Context, domain string, result models.ATSDetectionResult) {
	if d.cache == nil {
		return
	}
	now := time.Now()
	err := d.cache.Store(ctx, &models.ATSCacheEntry{
		Domain:     domain,
		Provider:   result.Provider,
		BoardToken: result.BoardToken,
		DetectedAt: now,
		ExpiresAt:  now.Add(d.cacheTTL),
	})
	if err != nil {
		d.logger.Warn().Err(err).Str("domain", domain).Msg("Failed to store ATS cache entry")
	}
}

// probeAll fans out one goroutine per provider, each walking the token
// variations, and picks the winner by priority order.
func (d *Detector) probeAll(ctx context.Context, tokens []string, technologies string) models.ATSDetectionResult {
	var (
		mu      sync.Mutex
		results = make(map[string]models.ATSDetectionResult)
		wg      sync.WaitGroup
	)

	for _, provider := range ProbeProviders {
		wg.Add(1)
		go func(provider string) {
			defer wg.Done()
			if result := d.probeProvider(ctx, provider, tokens); result.Detected() {
				mu.Lock()
				results[provider] = result
				mu.Unlock()
			}
		}(provider)
	}
	wg.Wait()

	for _, provider := range PriorityOrder(technologies) {
		if result, ok := results[provider]; ok {
			return result
		}
	}
	return models.ATSDetectionResult{DetectionMethod: models.DetectionAPIProbe}
}

func (d *Detector) probeProvider(ctx context.Context, provider string, tokens []string) models.ATSDetectionResult {
	for _, token := range tokens {
		endpoint := ProbeEndpoint(provider, token)
		if endpoint == "" {
			break
		}

		body, status, err := d.fetch(ctx, d.probeClient, endpoint)
		if err != nil || status != http.StatusOK {
			continue
		}
		if ValidateProbeBody(provider, body) {
			d.logger.Debug().Str("provider", provider).Str("token", token).Msg("ATS probe hit")
			return models.ATSDetectionResult{
				Provider:        provider,
				BoardToken:      token,
				Confidence:      0.95,
				DetectionMethod: models.DetectionAPIProbe,
			}
		}
	}
	return models.ATSDetectionResult{DetectionMethod: models.DetectionAPIProbe}
}

func (d *Detector) detectFromHomepage(ctx context.Context, domain string) models.ATSDetectionResult {
	return d.sweepURLs(ctx, []string{
		fmt.Sprintf("https://%s", domain),
		fmt.Sprintf("https://www.%s", domain),
	}, d.fingerprintPage)
}

func (d *Detector) detectFromCareersPages(ctx context.Context, domain string) models.ATSDetectionResult {
	priorityURLs := []string{
		fmt.Sprintf("https://careers.%s", domain),
		fmt.Sprintf("https://jobs.%s", domain),
		fmt.Sprintf("https://%s/careers", domain),
		fmt.Sprintf("https://%s/jobs", domain),
		fmt.Sprintf("https://%s/join", domain),
	}
	secondaryURLs := []string{
		fmt.Sprintf("https://%s/about/careers", domain),
		fmt.Sprintf("https://%s/company/careers", domain),
		fmt.Sprintf("https://%s/join-us", domain),
		fmt.Sprintf("https://%s/work-with-us", domain),
	}

	if result := d.sweepURLs(ctx, priorityURLs, d.checkCareersPage); result.Detected() {
		return result
	}
	return d.sweepURLs(ctx, secondaryURLs, d.checkCareersPage)
}

// sweepURLs fetches every URL concurrently, same shape as probeAll, and
// resolves the winner by input order so the ladder stays deterministic.
func (d *Detector) sweepURLs(ctx context.Context, urls []string, check func(context.Context, string) models.ATSDetectionResult) models.ATSDetectionResult {
	results := make([]models.ATSDetectionResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = check(ctx, url)
		}(i, url)
	}
	wg.Wait()

	for _, result := range results {
		if result.Detected() {
			return result
		}
	}
	return models.ATSDetectionResult{DetectionMethod: models.DetectionHTMLFingerprint}
}

func (d *Detector) fingerprintPage(ctx context.Context, url string) models.ATSDetectionResult {
	body, status, err := d.fetch(ctx, d.pageClient, url)
	if err != nil || status != http.StatusOK {
		return models.ATSDetectionResult{DetectionMethod: models.DetectionHTMLFingerprint}
	}
	return FingerprintHTML(string(body))
}

func (d *Detector) checkCareersPage(ctx context.Context, url string) models.ATSDetectionResult {
	miss := models.ATSDetectionResult{DetectionMethod: models.DetectionHTMLFingerprint}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return miss
	}
	response, err := d.pageClient.Do(request)
	if err != nil {
		return miss
	}

	finalURL := response.Request.URL.String()
	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxProbeBody))
	response.Body.Close()
	if response.StatusCode != http.StatusOK || readErr != nil {
		return miss
	}

	// A redirect onto a hosted board is the strongest signal
	if result := MatchHostedURL(finalURL); result.Detected() {
		return result
	}
	return FingerprintHTML(string(body))
}

func (d *Detector) extractLinkedInSlug(ctx context.Context, domain string) string {
	body, status, err := d.fetch(ctx, d.pageClient, fmt.Sprintf("https://%s", domain))
	if err != nil || status != http.StatusOK {
		return ""
	}
	for _, pattern := range linkedInPatterns {
		if match := pattern.FindSubmatch(body); match != nil {
			return string(match[1])
		}
	}
	return ""
}

func (d *Detector) fetch(ctx context.Context, client *http.Client, url string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxProbeBody))
	if err != nil {
		return nil, response.StatusCode, err
	}
	return body, response.StatusCode, nil
}

// FingerprintHTML extracts an ATS provider (and board token, when a
// pattern captures one) from page HTML.
func FingerprintHTML(html string) models.ATSDetectionResult {
	for _, entry := range htmlFingerprints {
		for _, pattern := range entry.patterns {
			match := pattern.FindStringSubmatch(html)
			if match == nil {
				continue
			}
			result := models.ATSDetectionResult{
				Provider:        entry.provider,
				Confidence:      0.6,
				DetectionMethod: models.DetectionHTMLFingerprint,
			}
			if len(match) > 1 && match[1] != "" {
				result.BoardToken = match[1]
				result.Confidence = 0.85
			}
			return result
		}
	}
	return models.ATSDetectionResult{DetectionMethod: models.DetectionHTMLFingerprint}
}

// MatchHostedURL identifies a hosted ATS board from a URL, typically a
// redirect target of a company careers link.
func MatchHostedURL(url string) models.ATSDetectionResult {
	for _, entry := range urlPatterns {
		for _, pattern := range entry.patterns {
			if match := pattern.FindStringSubmatch(url); match != nil {
				return models.ATSDetectionResult{
					Provider:        entry.provider,
					BoardToken:      match[1],
					Confidence:      1.0,
					DetectionMethod: models.DetectionURLRedirect,
				}
			}
		}
	}
	return models.ATSDetectionResult{DetectionMethod: models.DetectionURLRedirect}
}
