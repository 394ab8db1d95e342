package middleware

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/xy-planning-network/viewpoint"
)

// unknownIP stands in for a client address that cannot be determined.
const unknownIP = "0.0.0.0"

// forwardingHeaders are read right to left, in order, when a proxy sits in front of the server.
var forwardingHeaders = []string{"X-Forwarded-For", "X-Real-Ip"}

// An ipRange is the half-open range [start, end) of IPv4 addresses.
type ipRange struct {
	start net.IP
	end   net.IP
}

func (r ipRange) contains(ip net.IP) bool {
	return bytes.Compare(ip, r.start) >= 0 && bytes.Compare(ip, r.end) < 0
}

// IANA defined IPv4 non-public ranges
var privateRanges = []ipRange{
	{start: net.ParseIP("10.0.0.0"), end: net.ParseIP("10.255.255.255")},
	{start: net.ParseIP("100.64.0.0"), end: net.ParseIP("100.127.255.255")},
	{start: net.ParseIP("172.16.0.0"), end: net.ParseIP("172.31.255.255")},
	{start: net.ParseIP("192.0.0.0"), end: net.ParseIP("192.0.0.255")},
	{start: net.ParseIP("192.168.0.0"), end: net.ParseIP("192.168.255.255")},
	{start: net.ParseIP("198.18.0.0"), end: net.ParseIP("198.19.255.255")},
}

// InjectIPAddress stashes the client's IP address, per GetIPAddress,
// in the *http.Request.Context under viewpoint.IpAddrKey.
func InjectIPAddress() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.Clone(context.WithValue(r.Context(), viewpoint.IpAddrKey, GetIPAddress(r)))
			h.ServeHTTP(w, r)
		})
	}
}

// GetIPAddress determines the client's IP address.
//
// A request arriving straight from a public address is attributed to that address,
// so forwarding headers sent by the client itself are ignored.
// A request arriving from a private or loopback address came through a proxy:
// "X-Forwarded-For", then "X-Real-Ip", are read right to left
// for the first public address, the one right before the proxy.
// Without one, the proxy's own address returns.
//
// When even r.RemoteAddr cannot be parsed, "0.0.0.0" returns.
func GetIPAddress(r *http.Request) string {
	remote := remoteIP(r.RemoteAddr)
	if remote == nil {
		if ip := forwardedIP(r.Header); ip != "" {
			return ip
		}

		return unknownIP
	}

	if isPublic(remote) {
		return remote.String()
	}

	if ip := forwardedIP(r.Header); ip != "" {
		return ip
	}

	return remote.String()
}

// forwardedIP finds the rightmost public address in the forwarding headers.
func forwardedIP(hm http.Header) string {
	for _, h := range forwardingHeaders {
		addresses := strings.Split(hm.Get(h), ",")
		for i := len(addresses) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(addresses[i]))
			if ip == nil || !isPublic(ip) {
				continue
			}

			return ip.String()
		}
	}

	return ""
}

// remoteIP parses the host of addr, with or without a port.
func remoteIP(addr string) net.IP {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	return net.ParseIP(strings.TrimSpace(host))
}

// isPublic asserts ip is a global unicast address outside every private range.
func isPublic(ip net.IP) bool {
	if !ip.IsGlobalUnicast() || ip.IsPrivate() {
		return false
	}

	if v4 := ip.To4(); v4 != nil {
		ip = v4.To16()
		for _, r := range privateRanges {
			if r.contains(ip) {
				return false
			}
		}
	}

	return true
}
