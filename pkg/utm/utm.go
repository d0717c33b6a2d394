// Package utm handles the first-touch attribution cookie.
package utm

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"time"
)

const CookieName = "utm"

// Attribution is the first-touch traffic source. Ts is the epoch millis at
// which the cookie was set.
type Attribution struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Ref      string `json:"ref,omitempty"`
	Ts       int64  `json:"ts,omitempty"`
}

// Empty reports whether no attribution field is present.
func (a Attribution) Empty() bool {
	return a.Source == "" && a.Medium == "" && a.Campaign == "" && a.Ref == ""
}

// Fresh reports whether the cookie was set less than ttl before now.
func (a Attribution) Fresh(now time.Time, ttl time.Duration) bool {
	if a.Ts <= 0 {
		return false
	}
	return now.Sub(time.UnixMilli(a.Ts)) < ttl
}

// Encode serializes a as cookie-safe base64url JSON.
func Encode(a Attribution) (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Parse decodes a cookie value. Base64url JSON and plain (optionally
// URL-escaped) JSON are both accepted; anything else yields nil.
func Parse(value string) *Attribution {
	if value == "" {
		return nil
	}
	candidates := [][]byte{}
	if decoded, err := base64.RawURLEncoding.DecodeString(value); err == nil {
		candidates = append(candidates, decoded)
	}
	if unescaped, err := url.QueryUnescape(value); err == nil {
		candidates = append(candidates, []byte(unescaped))
	}
	for _, raw := range candidates {
		var a Attribution
		if err := json.Unmarshal(raw, &a); err == nil {
			return &a
		}
	}
	return nil
}
