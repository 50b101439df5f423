// Package hostutil normalizes user-supplied API hosts into base URLs and
// enforces the https rule for credential-bearing traffic.
package hostutil

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Normalize turns a bare host into a full base URL. Loopback hosts get
// http://, everything else https://. Inputs that already carry a scheme are
// returned untouched.
func Normalize(host string) string {
	switch {
	case host == "":
		return ""
	case strings.Contains(host, "://"):
		return host
	case IsLocalhost(host):
		return "http://" + host
	default:
		return "https://" + host
	}
}

// RequireSecureURL rejects plain-http base URLs for anything but loopback.
// The base URL is where credentials are sent.
func RequireSecureURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", rawURL, err)
	}
	if u.Scheme == "http" && !IsLocalhost(u.Host) {
		return fmt.Errorf("insecure http:// base URL %q; use https://", rawURL)
	}
	return nil
}

// IsLocalhost reports whether host (optionally host:port) is localhost, a
// *.localhost name per RFC 6761, or a loopback IP literal.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else {
		host = strings.Trim(host, "[]")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
