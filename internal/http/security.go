package http

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"registros/internal/log"
)

// Route names used for rate limiting, logs and metrics. The mutating ones are
// the ledger operations.
const (
	routeIndex  = "index"
	routeCreate = log.OpAdd
	routeDelete = log.OpDelete
	routeClear  = log.OpClear
	routeExport = log.OpExport
)

var mutatingRoutes = map[string]bool{
	routeCreate: true,
	routeDelete: true,
	routeClear:  true,
}

// Reasons a request is flagged as suspicious.
const (
	reasonMethod    = "method"
	reasonLongURL   = "long_url"
	reasonProbePath = "probe_path"
	reasonInjection = "injection"
	reasonScanner   = "scanner_agent"
	reasonForwarded = "forwarded_chain"
)

// securityMetrics counts flagged requests by reason.
type securityMetrics struct {
	suspiciousRequests int64

	mu       sync.Mutex
	byReason map[string]int64
}

func (m *securityMetrics) record(reason string) {
	atomic.AddInt64(&m.suspiciousRequests, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byReason == nil {
		m.byReason = make(map[string]int64)
	}
	m.byReason[reason]++
}

func (m *securityMetrics) reasons() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.byReason))
	for k, v := range m.byReason {
		out[k] = v
	}
	return out
}

// trustedProxies defines networks that are trusted to set forwarding headers.
var trustedProxies = []*net.IPNet{
	parsecidr("127.0.0.0/8"),
	parsecidr("10.0.0.0/8"),
	parsecidr("172.16.0.0/12"),
	parsecidr("192.168.0.0/16"),
}

func parsecidr(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the address the rate limiter keys on. Forwarding
// headers only count when the direct peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil || !isTrustedProxy(parsedDirectIP) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		clientIP := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(clientIP) != nil {
			return clientIP
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

// isLedgerPath reports whether path is one the server actually answers.
func isLedgerPath(path string) bool {
	switch path {
	case "/", "/entries", "/clear", "/export", "/healthz", "/readyz", "/metrics":
		return true
	}
	if strings.HasPrefix(path, "/static/") {
		return true
	}
	if pos, ok := strings.CutPrefix(path, "/entries/"); ok {
		pos, ok = strings.CutSuffix(pos, "/delete")
		if !ok {
			return false
		}
		_, err := strconv.Atoi(pos)
		return err == nil
	}
	return false
}

// Fragments that only show up in scans for other software.
var probeFragments = []string{
	".env", ".git", ".ssh", ".php", ".asp", "wp-admin", "wp-login",
	"phpmyadmin", "cgi-bin", "actuator", "server-status",
}

// Fragments that never belong in a ledger URL.
var injectionFragments = []string{
	"../", "..\\", "%2e%2e", "etc/passwd", "cmd.exe", "<script",
	"javascript:", "union select", "eval(",
}

// Scanner user agents. Plain HTTP clients such as curl are fine: the JSON
// form of POST /entries is meant for them.
var scannerAgents = []string{
	"sqlmap", "nikto", "nmap", "gobuster", "dirbuster", "dirb", "masscan",
	"zgrab", "nuclei", "wpscan",
}

// detectSuspiciousRequest returns why r looks like an attack on the server,
// or "" when it looks like ordinary use of the ledger.
func detectSuspiciousRequest(r *http.Request) string {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		return reasonMethod
	}
	if len(r.URL.String()) > 2048 {
		return reasonLongURL
	}

	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, f := range injectionFragments {
		if strings.Contains(path, f) || strings.Contains(query, f) {
			return reasonInjection
		}
	}
	if !isLedgerPath(r.URL.Path) {
		for _, f := range probeFragments {
			if strings.Contains(path, f) {
				return reasonProbePath
			}
		}
	}

	userAgent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, agent := range scannerAgents {
		if strings.Contains(userAgent, agent) {
			return reasonScanner
		}
	}

	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return reasonForwarded
	}
	return ""
}
