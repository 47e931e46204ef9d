package utils

import (
	"fmt"

	ua "github.com/mileusna/useragent"
)

// DeviceInfo reduces a raw User-Agent header to a coarse
// "browser / OS / form factor" descriptor for session records. Parsing is
// best effort; an empty or unrecognizable header yields "Unknown" parts,
// never an error.
func DeviceInfo(rawUserAgent string) string {
	if rawUserAgent == "" {
		return ""
	}

	parsed := ua.Parse(rawUserAgent)

	browser := parsed.Name
	if browser == "" {
		browser = "Unknown"
	}
	osName := parsed.OS
	if osName == "" {
		osName = "Unknown"
	}

	form := "desktop"
	switch {
	case parsed.Bot:
		form = "bot"
	case parsed.Mobile, parsed.Tablet:
		form = "mobile"
	}

	return fmt.Sprintf("%s / %s / %s", browser, osName, form)
}
