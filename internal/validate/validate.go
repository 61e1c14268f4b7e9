// Package validate holds the pure input checks applied before any side effect:
// playlist URL shape and object store endpoint, public URL, and bucket syntax.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$`)

// PlaylistURL accepts https YouTube playlist, watch, or youtu.be links.
func PlaylistURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("playlist URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" {
		return errors.New("URL must use https")
	}
	host := strings.ToLower(u.Hostname())
	isShort := host == "youtu.be"
	if !isShort && host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return fmt.Errorf("URL host %q is not a YouTube domain", u.Hostname())
	}
	query := u.Query()
	switch {
	case query.Get("list") != "":
	case query.Get("v") != "":
	case strings.HasPrefix(u.Path, "/watch"):
	case isShort && strings.Trim(u.Path, "/") != "":
	default:
		return errors.New("URL must reference a playlist (list=) or a video (v=)")
	}
	return nil
}

// Endpoint accepts an https object store endpoint without query or fragment.
func Endpoint(raw string) error {
	u, err := parseBase(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" {
		return errors.New("endpoint must use https")
	}
	return nil
}

// PublicURL accepts an http(s) base URL without query or fragment.
func PublicURL(raw string) error {
	u, err := parseBase(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return errors.New("public URL must use http or https")
	}
	return nil
}

func parseBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Host == "" {
		return nil, errors.New("URL must include a host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, errors.New("URL must not include a query or fragment")
	}
	return u, nil
}

// BucketName applies S3 bucket naming rules.
func BucketName(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return errors.New("bucket name must be between 3 and 63 characters")
	}
	if !bucketPattern.MatchString(name) {
		return errors.New("bucket name must contain only lowercase letters, numbers, and hyphens, and start and end with a letter or number")
	}
	if strings.Contains(name, "..") {
		return errors.New("bucket name must not contain consecutive periods")
	}
	return nil
}

// Required rejects blank values such as access keys.
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("value is required")
	}
	return nil
}
