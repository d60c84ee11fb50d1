/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIdentity is used for callers without a resolvable address. All of them share one budget.
const UnknownIdentity = "unknown"

// HeaderForwardedFor is the header consulted when the caller address is not known.
const HeaderForwardedFor = "X-Forwarded-For"

// ResolveIdentity returns ip if it is not empty, otherwise the first entry of the forwarded-for value,
// otherwise UnknownIdentity.
func ResolveIdentity(ip, forwardedFor string) string {
	if ip = strings.TrimSpace(ip); ip != "" {
		return ip
	}
	first, _, _ := strings.Cut(forwardedFor, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return UnknownIdentity
}

// IdentityFromRequest resolves the identity of the HTTP request from its remote address
// and the X-Forwarded-For header.
func IdentityFromRequest(r *http.Request) string {
	return ResolveIdentity(hostFromAddr(r.RemoteAddr), r.Header.Get(HeaderForwardedFor))
}

func hostFromAddr(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
