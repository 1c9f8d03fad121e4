package models

import "time"

// ProviderLinkedInOnly marks companies whose only discoverable hiring
// surface is a LinkedIn page. The orchestrator treats it as "no ATS"
// and does not fetch jobs for it.
const ProviderLinkedInOnly = "linkedin_only"

// Detection methods, in the order the engine attempts them.
const (
	DetectionCache           = "cache"
	DetectionAPIProbe        = "api_probe"
	DetectionHTMLFingerprint = "html_fingerprint"
	DetectionURLRedirect     = "url_redirect"
	DetectionLinkedInFall    = "linkedin_fallback"
	DetectionDefaultFall     = "default_fallback"
)

// ATSDetectionResult is the outcome of one detection attempt.
// Provider is a known ATS name, ProviderLinkedInOnly, or empty when a
// probe found nothing.
type ATSDetectionResult struct {
	Provider        string  `json:"provider,omitempty"`
	BoardToken      string  `json:"board_token,omitempty"`
	Confidence      float64 `json:"confidence"`
	DetectionMethod string  `json:"detection_method"`
}

// Detected reports whether the result names a provider.
func (r ATSDetectionResult) Detected() bool {
	return r.Provider != ""
}

// ATSCacheEntry memoizes a successful detection per domain.
type ATSCacheEntry struct {
	Domain     string    `json:"domain"`
	Provider   string    `json:"ats_provider"`
	BoardToken string    `json:"board_token,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
