package cookies

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	_ "modernc.org/sqlite"
)

// FirefoxSource reads the Firefox cookies.sqlite store. Firefox keeps cookie
// values in the clear, so this is the most reliable browser source.
type FirefoxSource struct {
	Domains []string
}

func (s *FirefoxSource) Name() string { return "firefox cookies" }

func (s *FirefoxSource) Resolve(ctx context.Context) (string, func(), error) {
	dbPath, err := firefoxCookieDB()
	if err != nil {
		return "", nil, err
	}

	cookies, err := readCookieDB(ctx, dbPath,
		`SELECT host, path, name, value, expiry, isSecure FROM moz_cookies`,
		func(rows *sql.Rows) (Cookie, error) {
			var c Cookie
			var secure int
			err := rows.Scan(&c.Domain, &c.Path, &c.Name, &c.Value, &c.Expires, &secure)
			c.Secure = secure != 0
			return c, err
		})
	if err != nil {
		return "", nil, err
	}

	cookies = filterDomains(cookies, s.Domains)
	if len(cookies) == 0 {
		return "", nil, ErrNoCookies
	}
	return writeTempCookieFile("firefox", cookies)
}

// ChromiumSource reads a Chromium-family cookie store. Values encrypted with
// the OS keychain (the common case on current Chrome releases) are skipped;
// when nothing readable remains the source reports ErrNoCookies and the
// ladder falls through.
type ChromiumSource struct {
	Browser string
	Domains []string
}

func (s *ChromiumSource) Name() string { return s.Browser + " cookies" }

func (s *ChromiumSource) Resolve(ctx context.Context) (string, func(), error) {
	dbPath, err := chromiumCookieDB(s.Browser)
	if err != nil {
		return "", nil, err
	}

	cookies, err := readCookieDB(ctx, dbPath,
		`SELECT host_key, path, name, value, expires_utc, is_secure FROM cookies`,
		func(rows *sql.Rows) (Cookie, error) {
			var c Cookie
			var secure int
			var expiresUTC int64
			err := rows.Scan(&c.Domain, &c.Path, &c.Name, &c.Value, &expiresUTC, &secure)
			c.Secure = secure != 0
			c.Expires = chromiumTimeToUnix(expiresUTC)
			return c, err
		})
	if err != nil {
		return "", nil, err
	}

	// Empty value means the real value lives in encrypted_value.
	readable := cookies[:0]
	for _, c := range cookies {
		if c.Value != "" {
			readable = append(readable, c)
		}
	}
	readable = filterDomains(readable, s.Domains)
	if len(readable) == 0 {
		return "", nil, ErrNoCookies
	}
	return writeTempCookieFile(s.Browser, readable)
}

// readCookieDB copies the store to a temp file first: the browser usually
// holds the live database locked.
func readCookieDB(ctx context.Context, dbPath, query string, scan func(*sql.Rows) (Cookie, error)) ([]Cookie, error) {
	tmp, err := copyToTemp(dbPath)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return nil, fmt.Errorf("open cookie store: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query cookie store: %w", err)
	}
	defer rows.Close()

	var cookies []Cookie
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}

func filterDomains(cookies []Cookie, wanted []string) []Cookie {
	if len(wanted) == 0 {
		return cookies
	}
	out := cookies[:0]
	for _, c := range cookies {
		if matchesDomain(c.Domain, wanted) {
			out = append(out, c)
		}
	}
	return out
}

func copyToTemp(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCookies
		}
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "cookiedb-*.sqlite")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// firefoxCookieDB locates the newest cookies.sqlite across Firefox profiles.
func firefoxCookieDB() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ErrNoCookies
	}

	var roots []string
	switch runtime.GOOS {
	case "darwin":
		roots = []string{filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles")}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			roots = []string{filepath.Join(appData, "Mozilla", "Firefox", "Profiles")}
		}
	default:
		roots = []string{
			filepath.Join(home, ".mozilla", "firefox"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox"),
		}
	}

	var newest string
	var newestMod int64
	for _, root := range roots {
		matches, _ := filepath.Glob(filepath.Join(root, "*", "cookies.sqlite"))
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			if mod := info.ModTime().Unix(); mod > newestMod {
				newest, newestMod = m, mod
			}
		}
	}
	if newest == "" {
		return "", ErrNoCookies
	}
	return newest, nil
}

// chromiumCookieDB locates the default-profile cookie store for a
// Chromium-family browser.
func chromiumCookieDB(browser string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ErrNoCookies
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support")
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		base = filepath.Join(home, ".config")
	}
	if base == "" {
		return "", ErrNoCookies
	}

	var vendor string
	switch browser {
	case "chrome":
		if runtime.GOOS == "linux" {
			vendor = "google-chrome"
		} else {
			vendor = filepath.Join("Google", "Chrome")
		}
	case "chromium":
		vendor = "Chromium"
		if runtime.GOOS == "linux" {
			vendor = "chromium"
		}
	case "edge":
		if runtime.GOOS == "linux" {
			vendor = "microsoft-edge"
		} else {
			vendor = filepath.Join("Microsoft", "Edge")
		}
	case "brave":
		vendor = filepath.Join("BraveSoftware", "Brave-Browser")
	default:
		return "", ErrNoCookies
	}

	// Newer Chromium keeps the store under Default/Network.
	candidates := []string{
		filepath.Join(base, vendor, "Default", "Network", "Cookies"),
		filepath.Join(base, vendor, "Default", "Cookies"),
	}
	if runtime.GOOS == "windows" {
		candidates = append(candidates,
			filepath.Join(base, vendor, "User Data", "Default", "Network", "Cookies"),
			filepath.Join(base, vendor, "User Data", "Default", "Cookies"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", ErrNoCookies
}

// chromiumTimeToUnix converts Chromium's microseconds-since-1601 timestamps.
func chromiumTimeToUnix(t int64) int64 {
	if t == 0 {
		return 0
	}
	const epochDelta = 11644473600 // seconds between 1601-01-01 and 1970-01-01
	return t/1_000_000 - epochDelta
}
