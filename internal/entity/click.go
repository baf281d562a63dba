package entity

import "time"

type DeviceType string

const (
	DeviceDesktop DeviceType = "Desktop"
	DeviceMobile  DeviceType = "Mobile"
	DeviceTablet  DeviceType = "Tablet"
)

// AnalyticsEvent is one enriched click. Events are written by the
// click worker only and are immutable after creation. An event may
// outlive its Link; that drift is accepted.
type AnalyticsEvent struct {
	ID               string     `json:"id"`
	LinkID           string     `json:"link_id"`
	Timestamp        time.Time  `json:"timestamp"`
	IPAddress        string     `json:"ip_address"`
	UserAgent        string     `json:"user_agent"`
	Referrer         string     `json:"referrer"`
	ReferrerCategory string     `json:"referrer_category"`
	Country          string     `json:"country"`
	City             string     `json:"city"`
	DeviceType       DeviceType `json:"device_type"`
	Browser          string     `json:"browser"`
	OS               string     `json:"os"`
}
