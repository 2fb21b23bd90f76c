package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15", "mobile"},
		{"android phone", "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Mobile Safari/537.36", "mobile"},
		{"windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36", "desktop"},
		{"mac desktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36", "desktop"},
		{"empty", "", "desktop"},
		{"android tablet", "Mozilla/5.0 (Linux; Android 12; SM-X200 Tablet) AppleWebKit/537.36", "mobile"},
		{"generic tablet", "SomeBrowser/1.0 (Tablet; rv:1.0)", "tablet"},
		{"uppercase mobile", "MOZILLA/5.0 (LINUX; ANDROID 13) MOBILE", "mobile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDevice(tt.ua))
		})
	}
}

// The mobile signature set includes "ipad" and is checked first, so iPads
// classify as mobile. Historical breakdowns depend on this staying put.
func TestDetectDeviceIPadMatchesMobileFirst(t *testing.T) {
	ua := "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15"
	assert.Equal(t, "mobile", DetectDevice(ua))
}

func TestDetectDeviceIsPure(t *testing.T) {
	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)"
	first := DetectDevice(ua)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectDevice(ua))
	}
}

func TestDetectOS(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "windows"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", "macos"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)", "ios"},
		{"Mozilla/5.0 (Linux; Android 13; Pixel 7)", "android"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "linux"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectOS(tt.ua), "ua=%q", tt.ua)
	}
}
