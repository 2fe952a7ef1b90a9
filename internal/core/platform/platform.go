// Package platform classifies video URLs into a closed set of supported
// short-video services and supplies the per-service download profile used by
// the acquisition engine.
package platform

import (
	"net/url"
	"strings"
)

// ID identifies a supported video platform.
type ID string

const (
	YouTube   ID = "youtube"
	TikTok    ID = "tiktok"
	Instagram ID = "instagram"
	Facebook  ID = "facebook"
	Douyin    ID = "douyin"
	Unknown   ID = "unknown"
)

// hostRule maps a host substring to a platform. First match wins, so more
// specific entries (vm.tiktok.com) must precede generic ones if they ever
// diverge.
type hostRule struct {
	substr string
	id     ID
}

// Ordered list of known host fragments. Matching is plain substring
// containment on the lowercased host: no wildcards, no TLD normalization.
var hostRules = []hostRule{
	{"youtube.com", YouTube},
	{"youtu.be", YouTube},
	{"vm.tiktok.com", TikTok},
	{"tiktok.com", TikTok},
	{"instagram.com", Instagram},
	{"facebook.com", Facebook},
	{"fb.com", Facebook},
	{"douyin.com", Douyin},
}

// Detect classifies a URL by its host component. Malformed input, a missing
// host, or an unrecognized host all yield Unknown; Detect never fails.
func Detect(rawURL string) ID {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Unknown
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Unknown
	}

	for _, r := range hostRules {
		if strings.Contains(host, r.substr) {
			return r.id
		}
	}
	return Unknown
}

// Supported returns the platforms with a download profile, in table order.
func Supported() []ID {
	ids := make([]ID, 0, len(profiles))
	for _, p := range profileOrder {
		ids = append(ids, p)
	}
	return ids
}

// Domains returns the known host fragments for a platform, used to scope
// cookie exports to the site being fetched.
func (id ID) Domains() []string {
	var out []string
	for _, r := range hostRules {
		if r.id == id {
			out = append(out, r.substr)
		}
	}
	return out
}

func (id ID) String() string { return string(id) }

// Title returns the platform name capitalized for user-facing messages.
func (id ID) Title() string {
	s := string(id)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
