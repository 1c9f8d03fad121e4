package enrichment

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryConfig controls backoff for rate-limited enrichment calls.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultGeminiRetryConfig returns the tuned Gemini defaults. Free-tier
// quotas reset on a rolling minute, so the initial backoff starts high
// rather than at the usual sub-second value.
func DefaultGeminiRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 45 * time.Second,
		MaxBackoff:     90 * time.Second,
		Multiplier:     1.5,
	}
}

// DefaultApolloRetryConfig returns the Apollo defaults. Apollo rate
// limits clear quickly, so backoff starts low and doubles.
func DefaultApolloRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// NextBackoff returns the wait after a given backoff, capped at
// MaxBackoff.
func (c RetryConfig) NextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * c.Multiplier)
	if next > c.MaxBackoff {
		next = c.MaxBackoff
	}
	return next
}

// Do runs op, backing off on rate-limit errors until an attempt
// succeeds, a non-retryable error occurs, or the retry budget runs out.
// A server-suggested retry delay in the error message wins over the
// computed backoff.
func (c RetryConfig) Do(ctx context.Context, logger arbor.ILogger, op func() error) error {
	backoff := c.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRateLimitError(err) || attempt == c.MaxRetries {
			break
		}

		wait := backoff
		if suggested := ExtractRetryDelay(err); suggested > 0 {
			wait = suggested
		}
		logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("Rate limited, backing off")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff = c.NextBackoff(backoff)
	}

	return lastErr
}

// IsRateLimitError reports whether an error looks like a quota
// rejection. Both APIs surface these as plain errors, so this is a
// string check.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	lower := strings.ToLower(message)
	return strings.Contains(message, "429") ||
		strings.Contains(message, "RESOURCE_EXHAUSTED") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "quota")
}

var retryDelayRe = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay pulls the server-suggested wait out of a rate limit
// error message, plus a small buffer. Returns 0 when the message names
// no delay.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	match := retryDelayRe.FindStringSubmatch(err.Error())
	if match == nil {
		return 0
	}
	seconds, parseErr := strconv.ParseFloat(match[1], 64)
	if parseErr != nil {
		return 0
	}
	return time.Duration(seconds*float64(time.Second)) + 5*time.Second
}
