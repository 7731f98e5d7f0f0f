package validation

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrRedirectEmpty       = errors.New("redirect uri is empty")
	ErrRedirectNotAbsolute = errors.New("redirect uri must be absolute")
	ErrRedirectFragment    = errors.New("redirect uri must not contain a fragment")
	ErrRedirectScheme      = errors.New("redirect uri scheme not allowed")
)

// ValidRedirectURI checks a registered client redirect URI (RFC 6749 3.1.2).
func ValidRedirectURI(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrRedirectEmpty
	}
	if strings.Contains(raw, "#") {
		return ErrRedirectFragment
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !u.IsAbs() || (u.Host == "" && u.Opaque == "" && u.Path == "") {
		return ErrRedirectNotAbsolute
	}
	switch strings.ToLower(u.Scheme) {
	case "javascript", "data", "vbscript", "file":
		return ErrRedirectScheme
	}
	return nil
}

// IsLocalPath reports whether raw is a same-origin path ("/cb"). Rejects
// scheme-relative "//host" forms.
func IsLocalPath(raw string) bool {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "" && u.Host == ""
}
