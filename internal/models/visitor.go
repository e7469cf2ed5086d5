package models

import (
	"strings"
	"time"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserUnknown = "unknown"
)

const (
	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
	TimeNight     = "night"
)

// VisitorContext is derived from the current clock and user agent at
// evaluation time. It is recomputed per decision cycle and never persisted.
type VisitorContext struct {
	Device    string `json:"device"`
	Browser   string `json:"browser"`
	TimeOfDay string `json:"time_of_day"`
	Day       string `json:"day"`
}

// DeriveVisitorContext classifies a user agent and a wall-clock instant into
// the four targeting dimensions.
func DeriveVisitorContext(userAgent string, now time.Time) VisitorContext {
	return VisitorContext{
		Device:    deviceClass(userAgent),
		Browser:   browserFamily(userAgent),
		TimeOfDay: timeOfDay(now.Hour()),
		Day:       strings.ToLower(now.Weekday().String()),
	}
}

func deviceClass(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return DeviceTablet
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// browserFamily checks Edge before Chrome and Chrome before Safari: Edge and
// Chrome user agents both contain "safari", and Edge contains "chrome".
func browserFamily(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg"):
		return BrowserEdge
	case strings.Contains(ua, "chrome") || strings.Contains(ua, "crios"):
		return BrowserChrome
	case strings.Contains(ua, "firefox") || strings.Contains(ua, "fxios"):
		return BrowserFirefox
	case strings.Contains(ua, "safari"):
		return BrowserSafari
	default:
		return BrowserUnknown
	}
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return TimeMorning
	case hour >= 12 && hour <= 16:
		return TimeAfternoon
	case hour >= 17 && hour <= 20:
		return TimeEvening
	default:
		return TimeNight
	}
}
