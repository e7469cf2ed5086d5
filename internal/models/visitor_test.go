package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveVisitorContext_Devices(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari": DeviceMobile,
		"Mozilla/5.0 (Linux; Android 14; Pixel 8) Chrome/120 Mobile Safari":    DeviceMobile,
		"Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) Safari":                 DeviceTablet,
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120 Safari":          DeviceDesktop,
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Version/17.1 Safari":  DeviceDesktop,
		"Mozilla/5.0 (Linux; Android 14; SM-X700 Tablet) Chrome/120 Safari":    DeviceTablet,
		"": DeviceDesktop,
	}

	for ua, want := range cases {
		got := DeriveVisitorContext(ua, time.Now())
		assert.Equal(t, want, got.Device, "ua=%q", ua)
	}
}

func TestDeriveVisitorContext_Browsers(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0 Safari/537.36":            BrowserChrome,
		"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0 Safari/537.36 Edg/120.0":  BrowserEdge,
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0":  BrowserFirefox,
		"Mozilla/5.0 (iPhone) CriOS/120.0 Mobile Safari":                          BrowserChrome,
		"Mozilla/5.0 (iPhone) FxiOS/121.0 Mobile Safari":                          BrowserFirefox,
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Version/17.1 Safari/605": BrowserSafari,
		"curl/8.4.0": BrowserUnknown,
	}

	for ua, want := range cases {
		got := DeriveVisitorContext(ua, time.Now())
		assert.Equal(t, want, got.Browser, "ua=%q", ua)
	}
}

func TestDeriveVisitorContext_TimeOfDay(t *testing.T) {
	cases := map[int]string{
		0:  TimeNight,
		4:  TimeNight,
		5:  TimeMorning,
		11: TimeMorning,
		12: TimeAfternoon,
		16: TimeAfternoon,
		17: TimeEvening,
		20: TimeEvening,
		21: TimeNight,
		23: TimeNight,
	}

	for hour, want := range cases {
		now := time.Date(2025, 6, 2, hour, 30, 0, 0, time.UTC)
		got := DeriveVisitorContext("", now)
		assert.Equal(t, want, got.TimeOfDay, "hour=%d", hour)
	}
}

func TestDeriveVisitorContext_Day(t *testing.T) {
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "monday", DeriveVisitorContext("", monday).Day)
	assert.Equal(t, "sunday", DeriveVisitorContext("", monday.AddDate(0, 0, 6)).Day)
}
