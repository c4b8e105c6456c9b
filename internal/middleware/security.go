package middleware

import (
	"net/http"
	"strconv"
)

// SecurityHeadersConfig lists the response headers added to every reply.
// Empty strings leave the header out.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy string
	FrameOptions          string // DENY or SAMEORIGIN
	ContentTypeNosniff    bool
	ReferrerPolicy        string
	PermissionsPolicy     string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds; 0 disables it.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// DefaultSecurityHeadersConfig returns headers for a JSON-only API.
// HSTS is off; the server is expected to sit behind a TLS-terminating proxy.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=()",
	}
}

func (c SecurityHeadersConfig) header() http.Header {
	h := make(http.Header)
	set := func(key, value string) {
		if value != "" {
			h.Set(key, value)
		}
	}

	set("Content-Security-Policy", c.ContentSecurityPolicy)
	set("X-Frame-Options", c.FrameOptions)
	set("Referrer-Policy", c.ReferrerPolicy)
	set("Permissions-Policy", c.PermissionsPolicy)
	if c.ContentTypeNosniff {
		h.Set("X-Content-Type-Options", "nosniff")
	}
	if c.HSTSMaxAge > 0 {
		hsts := "max-age=" + strconv.Itoa(c.HSTSMaxAge)
		if c.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		h.Set("Strict-Transport-Security", hsts)
	}
	return h
}

// SecurityHeaders adds the configured headers before calling next.
// The header set is computed once.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	fixed := config.header()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dst := w.Header()
			for key, values := range fixed {
				dst[key] = values
			}
			next.ServeHTTP(w, r)
		})
	}
}
