// Package assets restricts the remote images the dashboard displays to a
// fixed set of origins and serves them through a proxy enforcing that list.
package assets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	// DefaultMaxBytes bounds the size of a proxied image.
	DefaultMaxBytes = 5 << 20 // 5 MB

	// DefaultFetchTimeout bounds a single upstream fetch.
	DefaultFetchTimeout = 10 * time.Second
)

// ErrOriginNotAllowed is returned for URLs outside every allowed pattern.
var ErrOriginNotAllowed = errors.New("image origin not allowed")

// Pattern describes an allowed image location. Pathname may use "*" to match
// one path segment and may end in "/**" to match any suffix.
type Pattern struct {
	Protocol string `json:"protocol" yaml:"protocol"`
	Hostname string `json:"hostname" yaml:"hostname"`
	Port     string `json:"port,omitempty" yaml:"port,omitempty"`
	Pathname string `json:"pathname" yaml:"pathname"`
}

// Match reports whether u falls within the pattern.
func (p Pattern) Match(u *url.URL) bool {
	if !strings.EqualFold(u.Scheme, p.Protocol) || !strings.EqualFold(u.Hostname(), p.Hostname) {
		return false
	}
	if u.Port() != p.Port || u.User != nil {
		return false
	}
	return matchPath(p.Pathname, path.Clean("/"+u.Path))
}

func matchPath(pattern, p string) bool {
	if pattern == "" || pattern == "/**" {
		return true
	}

	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		pre := strings.Split(strings.Trim(prefix, "/"), "/")
		segs := strings.Split(strings.Trim(p, "/"), "/")
		if len(segs) <= len(pre) {
			return false
		}
		for i := range pre {
			if ok, _ := path.Match(pre[i], segs[i]); !ok {
				return false
			}
		}
		return true
	}

	ok, _ := path.Match(pattern, p)
	return ok
}

// Policy is an allow list of image patterns.
type Policy struct {
	patterns []Pattern
}

// NewPolicy returns a policy allowing the given patterns only.
func NewPolicy(patterns ...Pattern) *Policy {
	return &Policy{patterns: patterns}
}

// DefaultPolicy allows the portrait service used for avatars and the media
// CDN hosting the logo.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Pattern{Protocol: "https", Hostname: "randomuser.me", Pathname: "/api/portraits/**"},
		Pattern{Protocol: "https", Hostname: "res.cloudinary.com", Pathname: "/dbpoyo4gw/image/upload/**"},
	)
}

// Allow parses raw and checks it against the policy.
func (p *Policy) Allow(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrOriginNotAllowed, raw)
	}

	for _, pat := range p.patterns {
		if pat.Match(u) {
			return u, nil
		}
	}

	return nil, fmt.Errorf("%w: %s://%s%s", ErrOriginNotAllowed, u.Scheme, u.Host, u.Path)
}

// ProxyURL returns the local URL serving raw through the image proxy.
func ProxyURL(raw string) string {
	return "/_image?url=" + url.QueryEscape(raw)
}

// Handler returns an HTTP handler fetching the image named by the "url" query
// parameter when the policy allows it. Only image responses are relayed.
func (p *Policy) Handler(client *http.Client) http.Handler {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("url")
		if raw == "" {
			http.Error(w, "missing url", http.StatusBadRequest)
			return
		}

		u, err := p.Allow(raw)
		if err != nil {
			slog.Warn("image rejected", "url", raw, "error", err)
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u.String(), nil)
		if err != nil {
			http.Error(w, "bad url", http.StatusBadRequest)
			return
		}

		resp, err := client.Do(req)
		if err != nil {
			slog.Error("image fetch failed", "url", u.String(), "error", err)
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if resp.StatusCode != http.StatusOK || !strings.HasPrefix(mediaType, "image/") {
			slog.Warn("image upstream refused",
				"url", u.String(),
				"status", resp.StatusCode,
				"content_type", mediaType)
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}

		if resp.ContentLength > DefaultMaxBytes {
			http.Error(w, "image too large", http.StatusBadGateway)
			return
		}

		// Buffered so an undeclared oversized body is refused before the status is sent.
		body, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBytes+1))
		if err != nil {
			slog.Error("image read failed", "url", u.String(), "error", err)
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		if len(body) > DefaultMaxBytes {
			slog.Warn("image too large", "url", u.String(), "limit", DefaultMaxBytes)
			http.Error(w, "image too large", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write(body); err != nil {
			slog.Error("image relay failed", "url", u.String(), "error", err)
		}
	})
}
