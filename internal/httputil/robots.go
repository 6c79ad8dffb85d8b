// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a URL may be fetched under the host's
// robots.txt. Parsed files are cached per host for the checker's lifetime.
type RobotsChecker struct {
	client    *http.Client
	userAgent string

	mu    sync.RWMutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsChecker returns a checker that fetches robots.txt with client.
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		hosts:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched. An unreachable or
// unparseable robots.txt allows everything.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	data := r.load(ctx, u)
	if data == nil {
		return true, nil
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, agentToken(r.userAgent)), nil
}

func (r *RobotsChecker) load(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	r.mu.RLock()
	data, ok := r.hosts[u.Host]
	r.mu.RUnlock()
	if ok {
		return data
	}

	data = r.fetch(ctx, u.Scheme+"://"+u.Host+"/robots.txt")

	r.mu.Lock()
	r.hosts[u.Host] = data
	r.mu.Unlock()
	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}

// agentToken reduces a full User-Agent header to the product token robots
// groups are keyed on ("grantscraper/0.1 (+url)" -> "grantscraper").
func agentToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
