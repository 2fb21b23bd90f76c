package utils

import "strings"

// mobileSignatures is checked before tabletSignatures, so a UA containing
// "ipad" classifies as mobile even though it also matches the tablet set.
// This mirrors the tracking pixel shipped to existing clients; changing the
// order would shift historical device breakdowns.
var mobileSignatures = []string{"mobile", "android", "iphone", "ipad"}

var tabletSignatures = []string{"tablet", "ipad"}

// DetectDevice classifies a raw User-Agent string into desktop, mobile or
// tablet. Pure first-match-wins substring matching; empty input is desktop.
func DetectDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, sig := range mobileSignatures {
		if strings.Contains(ua, sig) {
			return "mobile"
		}
	}
	for _, sig := range tabletSignatures {
		if strings.Contains(ua, sig) {
			return "tablet"
		}
	}
	return "desktop"
}

// DetectOS infers a coarse OS family from the User-Agent. Best effort only;
// the raw UA is stored alongside so nothing is lost to a miss here.
func DetectOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "windows"):
		return "windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		return "ios"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		return "macos"
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "linux"):
		return "linux"
	default:
		return "unknown"
	}
}
