package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ds124wfegd/shortlink/internal/entity"
)

func TestReferrerCategories(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		expected string
	}{
		{name: "empty is direct", referrer: "", expected: CategoryDirect},
		{name: "explicit direct", referrer: "Direct", expected: CategoryDirect},
		{name: "facebook", referrer: "https://www.facebook.com/feed", expected: CategorySocial},
		{name: "twitter", referrer: "https://twitter.com/status/1", expected: CategorySocial},
		{name: "instagram", referrer: "https://instagram.com/p/abc", expected: CategorySocial},
		{name: "linkedin", referrer: "https://www.linkedin.com/in/x", expected: CategorySocial},
		{name: "gmail", referrer: "https://mail.google.com/mail/u/0", expected: CategoryEmail},
		{name: "outlook", referrer: "https://outlook.live.com", expected: CategoryEmail},
		{name: "google search", referrer: "https://www.google.com/search?q=x", expected: CategorySearch},
		{name: "bing", referrer: "https://www.bing.com/search?q=x", expected: CategorySearch},
		{name: "yahoo", referrer: "https://search.yahoo.com", expected: CategorySearch},
		{name: "shortened twitter domain is not matched", referrer: "https://t.co/x", expected: CategoryOther},
		{name: "unknown site", referrer: "https://example.com/page", expected: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Referrer(tt.referrer))
		})
	}
}

func TestReferrerEmailBeatsSearchOnGmail(t *testing.T) {
	// "gmail" contains no search substring, but mail.google.com carries
	// both "mail" and "google"; email matching runs before search only
	// for the social/email/search order defined here.
	assert.Equal(t, CategorySocial, Referrer("https://www.facebook.com?utm=google"))
	assert.Equal(t, CategoryEmail, Referrer("https://mail.google.com"))
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		device  entity.DeviceType
		browser string
		os      string
	}{
		{
			name:    "desktop chrome on windows",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			device:  entity.DeviceDesktop,
			browser: "Chrome",
			os:      "Windows",
		},
		{
			name:    "iphone safari",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			device:  entity.DeviceMobile,
			browser: "Safari",
			os:      "iOS",
		},
		{
			name:    "ipad safari",
			ua:      "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
			device:  entity.DeviceTablet,
			browser: "Safari",
			os:      "iOS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseUserAgent(tt.ua)
			assert.Equal(t, tt.device, parsed.Device)
			assert.Equal(t, tt.browser, parsed.Browser)
			assert.Equal(t, tt.os, parsed.OS)
		})
	}
}

func TestParseUserAgentEmpty(t *testing.T) {
	parsed := ParseUserAgent("")
	assert.Equal(t, entity.DeviceDesktop, parsed.Device)
	assert.Equal(t, UnknownValue, parsed.Browser)
	assert.Equal(t, UnknownValue, parsed.OS)
}

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		expected string
	}{
		{name: "ipv6 mapped ipv4", ip: "::ffff:203.0.113.7", expected: "203.0.113.7"},
		{name: "plain ipv4", ip: "198.51.100.4", expected: "198.51.100.4"},
		{name: "ipv6 loopback", ip: "::1", expected: "127.0.0.1"},
		{name: "ipv4 loopback", ip: "127.0.0.1", expected: "127.0.0.1"},
		{name: "ipv6 stays ipv6", ip: "2001:db8::1", expected: "2001:db8::1"},
		{name: "garbage passes through", ip: "not-an-ip", expected: "not-an-ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIP(tt.ip))
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		private bool
	}{
		{name: "rfc1918 10.x", ip: "10.1.2.3", private: true},
		{name: "rfc1918 172.16.x", ip: "172.16.0.9", private: true},
		{name: "rfc1918 192.168.x", ip: "192.168.1.1", private: true},
		{name: "loopback", ip: "127.0.0.1", private: true},
		{name: "link local", ip: "169.254.10.20", private: true},
		{name: "mapped private", ip: "::ffff:10.0.0.1", private: true},
		{name: "unparsable counts as private", ip: "", private: true},
		{name: "public ipv4", ip: "203.0.113.7", private: false},
		{name: "public ipv6", ip: "2001:4860:4860::8888", private: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.private, IsPrivateIP(tt.ip))
		})
	}
}
