package selection

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// ImageExtensions lists the file extensions accepted for pasted paths and
// URLs.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff", ".tif"}

var (
	windowsDrive = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
	uncPrefix    = regexp.MustCompile(`^\\\\[^\\]+\\`)
)

// HasImageExtension reports whether the path part of s ends in an allowed
// image extension. Query strings and fragments are ignored.
func HasImageExtension(s string) bool {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, `\`, "/")
	ext := strings.ToLower(path.Ext(s))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// CleanText trims whitespace and one pair of surrounding quotes, which
// file managers add when copying paths.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// IsImageURL reports whether s is an http(s) URL to an image file or an
// image data URL.
func IsImageURL(s string) bool {
	s = CleanText(s)
	if strings.HasPrefix(s, "data:image/") {
		return true
	}
	if strings.ContainsAny(s, " \n\t") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return HasImageExtension(u.Path)
}

// IsImagePath reports whether s looks like a local image file path:
// absolute POSIX, home-relative, dot-relative, Windows drive or UNC, or a
// file:// URL, ending in an allowed extension.
func IsImagePath(s string) bool {
	s = CleanText(s)
	if s == "" || strings.ContainsAny(s, "\n\r") {
		return false
	}
	p, ok := LocalPath(s)
	if !ok {
		return false
	}
	return HasImageExtension(p)
}

// LocalPath extracts the filesystem path from s, decoding file:// URLs. It
// reports false when s does not look like a path.
func LocalPath(s string) (string, bool) {
	s = CleanText(s)
	if strings.HasPrefix(strings.ToLower(s), "file://") {
		u, err := url.Parse(s)
		if err != nil || u.Path == "" {
			return "", false
		}
		p := u.Path
		if windowsDrive.MatchString(strings.TrimPrefix(p, "/")) {
			p = strings.TrimPrefix(p, "/")
		}
		return p, true
	}
	switch {
	case strings.HasPrefix(s, "/"),
		strings.HasPrefix(s, "~/"),
		strings.HasPrefix(s, "./"),
		strings.HasPrefix(s, "../"),
		windowsDrive.MatchString(s),
		uncPrefix.MatchString(s):
		return s, true
	}
	return "", false
}
