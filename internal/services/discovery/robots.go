package discovery

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

const (
	robotsCacheTTL   = 24 * time.Hour
	robotsFailTTL    = time.Hour
	maxRobotsBody    = 512 * 1024
	robotsUserAgent  = "*"
	robotsFetchPaths = "https://%s/robots.txt"
)

type robotsRule struct {
	allow bool
	path  string
}

type robotsEntry struct {
	rules     []robotsRule
	fetchedAt time.Time
	ttl       time.Duration
}

// RobotsCache answers "may we scrape this domain" from robots.txt,
// memoized per domain for the life of the run. A missing or unfetchable
// robots.txt allows everything; fetch failures are cached with a short
// TTL so a flaky domain is not hammered.
type RobotsCache struct {
	client *http.Client
	logger arbor.ILogger

	mu      sync.Mutex
	entries map[string]robotsEntry
}

func NewRobotsCache(client *http.Client, logger arbor.ILogger) *RobotsCache {
	return &RobotsCache{
		client:  client,
		logger:  logger,
		entries: make(map[string]robotsEntry),
	}
}

// Allowed reports whether the wildcard agent group permits fetching
// path on the domain.
func (c *RobotsCache) Allowed(ctx context.Context, domain, path string) bool {
	entry := c.lookup(ctx, domain)
	if path == "" {
		path = "/"
	}

	// Longest matching rule wins, allow wins a length tie
	bestLen := -1
	allowed := true
	for _, rule := range entry.rules {
		if !strings.HasPrefix(path, rule.path) {
			continue
		}
		ruleLen := len(rule.path)
		if ruleLen > bestLen || (ruleLen == bestLen && rule.allow) {
			bestLen = ruleLen
			allowed = rule.allow
		}
	}
	return allowed
}

func (c *RobotsCache) lookup(ctx context.Context, domain string) robotsEntry {
	c.mu.Lock()
	entry, ok := c.entries[domain]
	c.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < entry.ttl {
		return entry
	}

	entry = c.fetch(ctx, domain)
	c.mu.Lock()
	c.entries[domain] = entry
	c.mu.Unlock()
	return entry
}

func (c *RobotsCache) fetch(ctx context.Context, domain string) robotsEntry {
	entry := robotsEntry{fetchedAt: time.Now(), ttl: robotsCacheTTL}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(robotsFetchPaths, domain), nil)
	if err != nil {
		entry.ttl = robotsFailTTL
		return entry
	}
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Debug().Str("domain", domain).Err(err).Msg("robots.txt fetch failed, allowing")
		entry.ttl = robotsFailTTL
		return entry
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		// No robots.txt means no restrictions
		return entry
	}

	entry.rules = parseRobots(io.LimitReader(response.Body, maxRobotsBody))
	return entry
}

// parseRobots extracts the Allow/Disallow rules of the wildcard
// user-agent group.
func parseRobots(r io.Reader) []robotsRule {
	var rules []robotsRule
	inWildcardGroup := false
	sawRuleInGroup := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			// A user-agent line after rules starts a new group
			if sawRuleInGroup {
				inWildcardGroup = false
				sawRuleInGroup = false
			}
			if value == robotsUserAgent {
				inWildcardGroup = true
			}
		case "allow", "disallow":
			sawRuleInGroup = true
			if !inWildcardGroup || value == "" {
				continue
			}
			rules = append(rules, robotsRule{allow: field == "allow", path: value})
		}
	}
	return rules
}
