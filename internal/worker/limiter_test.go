package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	url := "https://query.wikidata.org/sparql"
	if err := limiter.Wait(ctx, url); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different domain should also work
	if err := limiter.Wait(ctx, "https://api.gleif.org/api/v1/lei-records"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	start := time.Now()
	err := limiter.WaitWithDelay(ctx, "https://www.reddit.com/search.json", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitWithDelay failed: %v", err)
	}

	duration := time.Since(start)
	if duration < 50*time.Millisecond {
		t.Errorf("expected delay >= 50ms, got %v", duration)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	url := "https://data-api.globalforestwatch.org/dataset"

	// First request ok
	if err := limiter.Wait(ctx, url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst of 1 is consumed; Allow() must now fail without waiting.
	if limiter.Allow(url) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Different domain has its own bucket
	if !limiter.Allow("https://overpass-api.de/api/interpreter") {
		t.Errorf("expected allow for other domain")
	}
}

func TestLimiter_SetDomainRate(t *testing.T) {
	limiter := NewLimiter(10, 10) // fast default
	domain := "overpass-api.de"

	// Set strict limit for specific domain
	limiter.SetDomainRate(domain, 0.1, 1) // very slow

	// First request passes (burst 1)
	if !limiter.Allow("https://" + domain) {
		t.Errorf("first request should pass")
	}

	// Second request fails
	if limiter.Allow("https://" + domain) {
		t.Errorf("second request should fail")
	}

	// Other domain still fast
	if !limiter.Allow("https://query.wikidata.org") {
		t.Errorf("other domain should pass")
	}
}

func TestExtractDomain(t *testing.T) {
	domain, err := extractDomain("https://overpass-api.de/api/interpreter")
	if err != nil {
		t.Fatalf("extractDomain failed: %v", err)
	}
	if domain != "overpass-api.de" {
		t.Errorf("expected overpass-api.de, got %s", domain)
	}

	_, err = extractDomain("::invalid")
	if err == nil {
		t.Errorf("expected error for invalid URL")
	}
}
