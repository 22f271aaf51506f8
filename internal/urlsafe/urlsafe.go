// Package urlsafe normalizes and validates domain and URL strings before they
// reach query strings or remote fetch tools.
package urlsafe

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	domainRe   = regexp.MustCompile(`^[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	unsafePath = regexp.MustCompile(`[^a-zA-Z0-9_./-]`)
)

// InvalidDomainError reports a domain that failed validation.
type InvalidDomainError struct {
	Domain string
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("invalid or unsafe domain: %q", e.Domain)
}

// IsSafeDomain reports whether input is a plausible hostname. A leading
// scheme is stripped before matching. Space, backslash, and quote characters
// are rejected outright so the value can never break out of a downstream
// query string.
func IsSafeDomain(input string) bool {
	d := strings.ToLower(strings.TrimSpace(input))
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		u, err := url.Parse(d)
		if err != nil {
			return false
		}
		d = u.Host
	}
	if strings.ContainsAny(d, ` \"'`) {
		return false
	}
	return domainRe.MatchString(d)
}

// EnsureHTTPS rewrites an http:// prefix to https:// and prepends https://
// to bare domains. Empty input is returned unchanged.
func EnsureHTTPS(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "http://") {
		return "https://" + strings.TrimPrefix(s, "http://")
	}
	if !strings.HasPrefix(s, "https://") {
		return "https://" + s
	}
	return s
}

// SanitizeURL normalizes input to an https URL with a lowercased host and a
// path restricted to [a-zA-Z0-9_./-]. Query and fragment are stripped. On
// parse failure the EnsureHTTPS output is returned unchanged: sanitization
// fails open so discovery can still attempt the URL.
func SanitizeURL(input string) string {
	ensured := EnsureHTTPS(input)
	u, err := url.Parse(ensured)
	if err != nil || u.Host == "" {
		return ensured
	}
	path := unsafePath.ReplaceAllString(u.Path, "")
	if path == "" {
		path = "/"
	}
	return "https://" + strings.ToLower(u.Host) + path
}
