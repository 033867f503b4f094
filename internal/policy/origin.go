package policy

import (
	"net/url"
	"strings"
)

// AllowOrigin decides whether a browser Origin may open an emulator websocket.
// An empty origin (non-browser client) is allowed, as is any origin whose host
// matches the request host. allowAny lifts the check entirely.
func AllowOrigin(origin, requestHost string, allowAny bool) bool {
	if allowAny {
		return true
	}
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if strings.EqualFold(u.Host, requestHost) {
		return true
	}
	return isLoopback(u.Hostname()) && isLoopback(hostOnly(requestHost))
}

func isLoopback(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func hostOnly(hostport string) string {
	u := url.URL{Host: hostport}
	return u.Hostname()
}
