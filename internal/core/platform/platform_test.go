package platform

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected ID
	}{
		{
			name:     "YouTube watch URL",
			url:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: YouTube,
		},
		{
			name:     "YouTube short link",
			url:      "https://youtu.be/dQw4w9WgXcQ",
			expected: YouTube,
		},
		{
			name:     "YouTube mobile",
			url:      "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			expected: YouTube,
		},
		{
			name:     "TikTok video",
			url:      "https://www.tiktok.com/@user/video/1234567890",
			expected: TikTok,
		},
		{
			name:     "TikTok share link",
			url:      "https://vm.tiktok.com/ZMabcdef/",
			expected: TikTok,
		},
		{
			name:     "Instagram reel",
			url:      "https://www.instagram.com/reel/Cabcdef/",
			expected: Instagram,
		},
		{
			name:     "Facebook video",
			url:      "https://www.facebook.com/someone/videos/1234",
			expected: Facebook,
		},
		{
			name:     "Facebook short domain",
			url:      "https://fb.com/someone/videos/1234",
			expected: Facebook,
		},
		{
			name:     "Douyin video",
			url:      "https://www.douyin.com/video/7123456789",
			expected: Douyin,
		},
		{
			name:     "Douyin share link",
			url:      "https://v.douyin.com/abcDEF/",
			expected: Douyin,
		},
		{
			name:     "Unknown host",
			url:      "https://vimeo.com/12345",
			expected: Unknown,
		},
		{
			name:     "Uppercase host",
			url:      "https://WWW.YOUTUBE.COM/watch?v=x",
			expected: YouTube,
		},
		{
			name:     "Empty string",
			url:      "",
			expected: Unknown,
		},
		{
			name:     "Garbage input",
			url:      "not a url at all",
			expected: Unknown,
		},
		{
			name:     "Malformed URL",
			url:      "http://%zz%zz",
			expected: Unknown,
		},
		{
			name:     "Scheme only",
			url:      "https://",
			expected: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.url); got != tt.expected {
				t.Errorf("Detect(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestLookupCoversAllSupported(t *testing.T) {
	for _, id := range Supported() {
		p, ok := Lookup(id)
		if !ok {
			t.Fatalf("Lookup(%q) missing", id)
		}
		if p.Format == "" {
			t.Errorf("profile for %q has empty format selector", id)
		}
		if p.EnrichError == nil {
			t.Errorf("profile for %q has nil error enrichment", id)
		}
	}

	if _, ok := Lookup(Unknown); ok {
		t.Error("Lookup(Unknown) should not return a profile")
	}
}

func TestInstagramUsesCookieFallback(t *testing.T) {
	p, _ := Lookup(Instagram)
	if p.Credentials != CredentialsCookieFallback {
		t.Error("Instagram profile should use cookie fallback")
	}

	for _, id := range []ID{YouTube, TikTok, Facebook, Douyin} {
		p, _ := Lookup(id)
		if p.Credentials != CredentialsNone {
			t.Errorf("%s profile should not require credentials", id)
		}
	}
}

func TestErrorEnrichment(t *testing.T) {
	tests := []struct {
		name     string
		id       ID
		raw      string
		contains []string
	}{
		{
			name:     "TikTok format error gets hints",
			id:       TikTok,
			raw:      "Requested format is not available",
			contains: []string{"TikTok Error:", "region-blocked", "vm.tiktok.com"},
		},
		{
			name:     "TikTok unrelated error stays plain",
			id:       TikTok,
			raw:      "HTTP Error 500",
			contains: []string{"TikTok Error: HTTP Error 500"},
		},
		{
			name:     "Instagram cookie error gets remediation",
			id:       Instagram,
			raw:      "Login required, use cookies",
			contains: []string{"Instagram Error:", "age-restricted", "Netscape format"},
		},
		{
			name:     "Facebook private video",
			id:       Facebook,
			raw:      "This video is private",
			contains: []string{"Facebook Error:", "Only public Facebook videos"},
		},
		{
			name:     "YouTube passthrough",
			id:       YouTube,
			raw:      "Video unavailable",
			contains: []string{"Youtube Error: Video unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Lookup(tt.id)
			if !ok {
				t.Fatalf("no profile for %q", tt.id)
			}
			got := p.EnrichError(tt.raw)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("enriched error missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestTitle(t *testing.T) {
	if got := Instagram.Title(); got != "Instagram" {
		t.Errorf("Title() = %q, want Instagram", got)
	}
	if got := ID("").Title(); got != "" {
		t.Errorf("empty Title() = %q", got)
	}
}
