// Package allowlist decides whether a tenant may publish links from a
// given source origin. The check is pure and side-effect free so both the
// ingestion and approval paths can call it.
package allowlist

import (
	"net/url"
	"strings"

	"github.com/campusfolio/platform/internal/records"
)

// Config controls validator behavior.
type Config struct {
	// AllowLoopback admits localhost/127.0.0.1 sources regardless of the
	// tenant's allowed domains. Meant for local and demo crawl targets.
	AllowLoopback bool
}

// Validator evaluates source URLs against a tenant's allowed-domain set.
type Validator struct {
	cfg Config
}

// New builds a Validator.
func New(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// IsAllowed reports whether sourceURL's host is permitted for the tenant.
// A host is allowed when it equals, or is a strict subdomain of, any entry
// in the tenant's allowed-domain set, or equals the host of the tenant's
// website origin. Comparison is case-insensitive. Unparsable URLs fail
// closed.
func (v *Validator) IsAllowed(tenant records.Tenant, sourceURL string) bool {
	host := extractHost(sourceURL)
	if host == "" {
		return false
	}

	if v.cfg.AllowLoopback && (host == "localhost" || host == "127.0.0.1") {
		return true
	}

	allowed := tenant.NormalizedDomains()
	if siteHost := extractHost(tenant.Website); siteHost != "" {
		allowed = append(allowed, siteHost)
	}

	for _, d := range allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// extractHost pulls a lowercase hostname out of raw, or "" when raw does
// not parse as an absolute URL with a host.
func extractHost(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
