package platform

import (
	"fmt"
	"strings"
)

// CredentialPolicy says whether a platform needs the cookie fallback ladder.
type CredentialPolicy int

const (
	// CredentialsNone downloads anonymously in a single pass.
	CredentialsNone CredentialPolicy = iota
	// CredentialsCookieFallback tries the manual cookie file, then browser
	// cookie stores, then no credentials, stopping at the first success.
	CredentialsCookieFallback
)

// Profile is the static download configuration for one platform. Profiles are
// built at init and never mutated; adding a platform means adding one entry
// to the table below.
type Profile struct {
	// Format is the yt-dlp format selector, written as an ordered fallback
	// chain ("a/b/c" tries a first).
	Format string

	// Credentials selects the acquisition path.
	Credentials CredentialPolicy

	// EnrichError rewrites a raw downloader diagnostic into a message with
	// platform-specific remediation hints. Never nil for table entries.
	EnrichError func(raw string) string
}

var profiles = map[ID]Profile{
	YouTube: {
		Format:      "best[height<=720]/best",
		Credentials: CredentialsNone,
		EnrichError: genericError(YouTube),
	},
	TikTok: {
		Format:      "best/h264_540p_468478/h264_540p_287260/bytevc1_540p_248040/download",
		Credentials: CredentialsNone,
		EnrichError: tiktokError,
	},
	Instagram: {
		Format:      "best[height<=720]/mp4/best",
		Credentials: CredentialsCookieFallback,
		EnrichError: instagramError,
	},
	Facebook: {
		Format:      "best[height<=720]/best",
		Credentials: CredentialsNone,
		EnrichError: facebookError,
	},
	Douyin: {
		Format:      "best/mp4",
		Credentials: CredentialsNone,
		EnrichError: genericError(Douyin),
	},
}

// profileOrder keeps Supported() deterministic.
var profileOrder = []ID{YouTube, TikTok, Instagram, Facebook, Douyin}

// Lookup returns the profile for a platform. The second result is false for
// Unknown or any ID without a table entry.
func Lookup(id ID) (Profile, bool) {
	p, ok := profiles[id]
	return p, ok
}

func genericError(id ID) func(string) string {
	return func(raw string) string {
		return fmt.Sprintf("%s Error: %s", id.Title(), raw)
	}
}

func tiktokError(raw string) string {
	if strings.Contains(strings.ToLower(raw), "format") {
		return fmt.Sprintf("TikTok Error: %s\n\n"+
			"TikTok troubleshooting:\n"+
			"  - This TikTok video may be region-blocked\n"+
			"  - Try using the vm.tiktok.com share link instead\n"+
			"  - Some TikTok videos have download restrictions", raw)
	}
	return genericError(TikTok)(raw)
}

func instagramError(raw string) string {
	if strings.Contains(raw, "Restricted Video") || strings.Contains(strings.ToLower(raw), "cookies") {
		return fmt.Sprintf("Instagram Error: %s\n\n"+
			"Instagram troubleshooting:\n"+
			"  - This video may be age-restricted or private\n"+
			"  - Try logging into Instagram in your browser first\n"+
			"  - Public posts usually work better than private/restricted content\n"+
			"  - Consider using the Instagram mobile app link instead\n\n"+
			"Cookie authentication failed:\n"+
			"  - Export Instagram cookies from your browser\n"+
			"  - Save them as the configured cookie_file (Netscape format)\n"+
			"  - Browser extensions like 'Export Cookies' can do this", raw)
	}
	return genericError(Instagram)(raw)
}

func facebookError(raw string) string {
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "login") || strings.Contains(lower, "private") {
		return fmt.Sprintf("Facebook Error: %s\n\n"+
			"Facebook troubleshooting:\n"+
			"  - This video may be private or require login\n"+
			"  - Only public Facebook videos can be downloaded\n"+
			"  - Make sure the video is accessible without logging in", raw)
	}
	return genericError(Facebook)(raw)
}
