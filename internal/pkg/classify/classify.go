// Package classify enriches raw click metadata: user-agent parsing,
// IP normalization and referrer categorization.
package classify

import (
	"net"
	"strings"

	"github.com/mileusna/useragent"

	"github.com/ds124wfegd/shortlink/internal/entity"
)

const (
	CategoryDirect = "Direct"
	CategorySocial = "Social"
	CategoryEmail  = "Email"
	CategorySearch = "Search"
	CategoryOther  = "Other"

	UnknownValue = "Unknown"
	LocalValue   = "Local"
)

var (
	socialHosts = []string{"facebook", "twitter", "instagram", "linkedin"}
	emailHosts  = []string{"mail", "gmail", "outlook"}
	searchHosts = []string{"google", "bing", "yahoo"}
)

// Referrer maps a raw referrer string to one of the fixed categories
// by substring matching, in the order social, email, search.
func Referrer(referrer string) string {
	ref := strings.ToLower(strings.TrimSpace(referrer))
	if ref == "" || ref == "direct" {
		return CategoryDirect
	}
	for _, s := range socialHosts {
		if strings.Contains(ref, s) {
			return CategorySocial
		}
	}
	for _, s := range emailHosts {
		if strings.Contains(ref, s) {
			return CategoryEmail
		}
	}
	for _, s := range searchHosts {
		if strings.Contains(ref, s) {
			return CategorySearch
		}
	}
	return CategoryOther
}

type UserAgent struct {
	Device  entity.DeviceType
	Browser string
	OS      string
}

// ParseUserAgent extracts the device class, browser and OS names from
// a raw user-agent string. Anything that is not clearly mobile or
// tablet counts as desktop.
func ParseUserAgent(raw string) UserAgent {
	ua := useragent.Parse(raw)

	device := entity.DeviceDesktop
	switch {
	case ua.Tablet:
		device = entity.DeviceTablet
	case ua.Mobile:
		device = entity.DeviceMobile
	}

	browser := ua.Name
	if browser == "" {
		browser = UnknownValue
	}
	os := ua.OS
	if os == "" {
		os = UnknownValue
	}

	return UserAgent{Device: device, Browser: browser, OS: os}
}

// NormalizeIP strips the IPv6-mapped prefix from IPv4 addresses and
// collapses loopback to the canonical localhost value.
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	ip = strings.TrimPrefix(ip, "::ffff:")

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}
	if parsed.IsLoopback() {
		return "127.0.0.1"
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}
	return parsed.String()
}

// IsPrivateIP reports whether the address belongs to a loopback,
// link-local or RFC1918 range, or cannot be parsed at all.
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(strings.TrimPrefix(strings.TrimSpace(ip), "::ffff:"))
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() ||
		parsed.IsLinkLocalUnicast() ||
		parsed.IsLinkLocalMulticast() ||
		parsed.IsPrivate()
}
