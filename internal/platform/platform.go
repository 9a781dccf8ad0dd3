// Package platform classifies URLs by the social platform they belong to.
package platform

import (
	"strings"

	"botdl/internal/entity"
	"botdl/pkg/urls"
)

// domains maps a platform to the hostnames it serves media from.
// First match wins, so more specific hosts go first inside a platform.
var domains = []struct {
	platform entity.Platform
	hosts    []string
}{
	{entity.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{entity.PlatformInstagram, []string{"instagram.com"}},
	{entity.PlatformTwitter, []string{"twitter.com", "x.com"}},
	{entity.PlatformFacebook, []string{"facebook.com", "fb.watch"}},
	{entity.PlatformTikTok, []string{"tiktok.com", "vm.tiktok.com", "vt.tiktok.com"}},
}

// Detect classifies raw by hostname. Non-http(s) input and unknown hosts
// come back as PlatformUnsupported; classification never fails.
func Detect(raw string) entity.Platform {
	if !urls.IsURLValid(raw) {
		return entity.PlatformUnsupported
	}

	host := urls.Host(raw)
	if host == "" {
		return entity.PlatformUnsupported
	}

	for _, d := range domains {
		for _, h := range d.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return d.platform
			}
		}
	}

	return entity.PlatformUnsupported
}
