// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ManuGH/confirmgate/internal/log"
)

var forwardingHeaders = []string{"Forwarded", "X-Forwarded-For", "X-Forwarded-Host", "X-Forwarded-Proto", "X-Forwarded-Server"}

// originPolicy decides whether an unsafe request came from a trusted page.
type originPolicy struct {
	any     bool
	allowed map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			p.any = true
			continue
		}
		if n, ok := normalizeOrigin(o); ok {
			p.allowed[n] = struct{}{}
		}
	}
	return p
}

// check returns an empty string when r may proceed, otherwise the rejection detail.
func (p originPolicy) check(r *http.Request) string {
	origin := sourceOrigin(r)
	if origin == "" {
		return "Missing origin or referer header"
	}
	if p.any {
		return ""
	}
	if _, ok := p.allowed[origin]; ok {
		return ""
	}
	// Behind a proxy Host no longer names the page the user saw.
	for _, h := range forwardingHeaders {
		if r.Header.Get(h) != "" {
			return "CSRF check failed: origin not trusted"
		}
	}
	if origin != ownOrigin(r) {
		return "CSRF check failed: origin not trusted"
	}
	return ""
}

// CSRFProtection rejects unsafe requests whose Origin (or Referer, when Origin is absent)
// is neither listed in allowedOrigins nor the server's own origin. A "*" entry allows any
// origin but still requires one of the headers.
func CSRFProtection(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if detail := policy.check(r); detail != "" {
				logger := log.WithComponentFromContext(r.Context(), "csrf")
				logger.Warn().
					Str(log.FieldEvent, "csrf.rejected").
					Str(log.FieldPath, r.URL.Path).
					Str("origin", r.Header.Get("Origin")).
					Msg(detail)
				writeProblem(w, r, http.StatusForbidden, "csrf_forbidden", detail)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sourceOrigin(r *http.Request) string {
	if o, ok := normalizeOrigin(r.Header.Get("Origin")); ok {
		return o
	}
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Scheme == "" || ref.Host == "" {
		return ""
	}
	o, _ := normalizeOrigin(ref.Scheme + "://" + ref.Host)
	return o
}

func ownOrigin(r *http.Request) string {
	if r.Host == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	o, _ := normalizeOrigin(scheme + "://" + r.Host)
	return o
}

// normalizeOrigin lower-cases scheme and host and strips the scheme's default port.
func normalizeOrigin(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if (scheme != "http" && scheme != "https") || host == "" || strings.ContainsAny(host, " \t\r\n/@\\") {
		return "", false
	}

	port := u.Port()
	if port != "" {
		if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
			return "", false
		}
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		return scheme + "://" + net.JoinHostPort(host, port), true
	}
	if strings.Contains(host, ":") {
		return scheme + "://[" + host + "]", true
	}
	return scheme + "://" + host, true
}
