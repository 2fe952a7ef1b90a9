package cookies

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const netscapeHeader = "# Netscape HTTP Cookie File"

// WriteNetscape writes cookies in the Netscape/Mozilla cookies.txt format
// understood by yt-dlp and curl.
func WriteNetscape(w io.Writer, cookies []Cookie) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, netscapeHeader)
	fmt.Fprintln(bw, "# This file was generated by framegrab. Edits may be overwritten.")
	fmt.Fprintln(bw)

	for _, c := range cookies {
		includeSub := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			includeSub = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain, includeSub, path, secure, c.Expires, c.Name, c.Value)
	}
	return bw.Flush()
}

// writeTempCookieFile persists cookies to a temp file and returns its path
// together with a cleanup func that deletes it.
func writeTempCookieFile(prefix string, cookies []Cookie) (string, func(), error) {
	f, err := os.CreateTemp("", prefix+"-cookies-*.txt")
	if err != nil {
		return "", nil, fmt.Errorf("create cookie file: %w", err)
	}
	if err := WriteNetscape(f, cookies); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, err
	}
	path := f.Name()
	return path, func() { os.Remove(path) }, nil
}

// matchesDomain reports whether a cookie domain belongs to one of the wanted
// site domains (exact or parent-domain match, leading dots ignored).
func matchesDomain(cookieDomain string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	d := strings.TrimPrefix(strings.ToLower(cookieDomain), ".")
	for _, w := range wanted {
		w = strings.TrimPrefix(strings.ToLower(w), ".")
		if d == w || strings.HasSuffix(d, "."+w) || strings.HasSuffix(w, "."+d) {
			return true
		}
	}
	return false
}
