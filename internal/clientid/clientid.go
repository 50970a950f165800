// internal/clientid/clientid.go
//
// Client identity helpers for rate limiting and the request log.
//
// Context
// -------
// The rate-limit key is the client IP joined with a truncated SHA-256 of
// the raw User-Agent header.  The hash keeps distinct clients behind one
// NAT'd address on separate counters without storing the agent string; it
// only needs uniqueness, not secrecy.  When no User-Agent is declared the
// key degrades to the IP alone.
//
// `Parse` additionally summarizes the User-Agent (browser, OS, device,
// bot flag) for the structured request log via uasurfer.
//
// Notes
// -----
//   • X-Forwarded-For is honored only when the server is configured to
//     trust its proxy; otherwise a client could mint fresh counters at
//     will.
//   • Oxford commas, two spaces after periods.

package clientid

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/avct/uasurfer"
)

// IP extracts the client network address.  With trustProxy set, the first
// entry of X-Forwarded-For wins; otherwise RemoteAddr, minus its port.
func IP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// Key derives the rate-limit key for r.
func Key(r *http.Request, trustProxy bool) string {
	ip := IP(r, trustProxy)
	ua := r.UserAgent()
	if ua == "" {
		return ip
	}
	sum := sha256.Sum256([]byte(ua))
	return ip + ":" + hex.EncodeToString(sum[:8])
}

//
// User-Agent summary
//

// Info is the parsed User-Agent summary attached to request-log entries.
type Info struct {
	Browser string
	OS      string
	Device  string
	Bot     bool
}

// Parse summarizes a raw User-Agent header.  An empty header yields the
// zero Info.
func Parse(uaHeader string) Info {
	if uaHeader == "" {
		return Info{}
	}
	u := uasurfer.Parse(uaHeader)
	return Info{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      strings.TrimPrefix(u.OS.Name.String(), "OS"),
		Device:  strings.TrimPrefix(u.DeviceType.String(), "Device"),
		Bot: u.Browser.Name == uasurfer.BrowserBot ||
			u.OS.Name == uasurfer.OSBot ||
			u.OS.Platform == uasurfer.PlatformBot,
	}
}
