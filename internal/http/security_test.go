package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		target    string
		userAgent string
		xff       string
		want      string
	}{
		{"index", http.MethodGet, "/", "Mozilla/5.0", "", ""},
		{"json create from curl", http.MethodPost, "/entries", "curl/8.5.0", "", ""},
		{"export from wget", http.MethodGet, "/export", "Wget/1.21", "", ""},
		{"delete route", http.MethodPost, "/entries/3/delete", "Mozilla/5.0", "", ""},
		{"static asset", http.MethodGet, "/static/app.js", "Mozilla/5.0", "", ""},
		{"unknown page", http.MethodGet, "/about", "Mozilla/5.0", "", ""},
		{"wordpress scan", http.MethodGet, "/wp-admin/setup.php", "Mozilla/5.0", "", reasonProbePath},
		{"dotenv scan", http.MethodGet, "/.env", "", "", reasonProbePath},
		{"traversal in path", http.MethodGet, "/static/../../etc/passwd", "", "", reasonInjection},
		{"script in query", http.MethodGet, "/?q=<script>alert(1)</script>", "", "", reasonInjection},
		{"trace method", "TRACE", "/", "", "", reasonMethod},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", "", reasonScanner},
		{"long proxy chain", http.MethodGet, "/", "", "1.1.1.1, 2.2.2.2, 3.3.3.3, 4.4.4.4, 5.5.5.5, 6.6.6.6, 7.7.7.7", reasonForwarded},
		{"long url", http.MethodGet, "/?" + strings.Repeat("a", 2100), "", "", reasonLongURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://example.com/", nil)
			req.URL.Path, req.URL.RawQuery, _ = strings.Cut(tt.target, "?")
			if tt.userAgent != "" {
				req.Header.Set("User-Agent", tt.userAgent)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := detectSuspiciousRequest(req); got != tt.want {
				t.Errorf("detectSuspiciousRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsLedgerPath(t *testing.T) {
	tests := map[string]bool{
		"/":                  true,
		"/entries":           true,
		"/entries/0/delete":  true,
		"/entries/12/delete": true,
		"/entries/x/delete":  false,
		"/entries/0":         false,
		"/clear":             true,
		"/export":            true,
		"/static/app.css":    true,
		"/wp-login.php":      false,
	}
	for path, want := range tests {
		if got := isLedgerPath(path); got != want {
			t.Errorf("isLedgerPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{"direct", "203.0.113.7:5000", "", "", "203.0.113.7"},
		{"untrusted peer cannot forward", "203.0.113.7:5000", "198.51.100.1", "", "203.0.113.7"},
		{"trusted proxy forwards", "127.0.0.1:5000", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted proxy real ip", "10.1.2.3:5000", "", "198.51.100.9", "198.51.100.9"},
		{"garbage forwarded value", "10.1.2.3:5000", "not-an-ip", "", "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
