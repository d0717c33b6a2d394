// Package whatsapp builds click-to-chat messages and links.
package whatsapp

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

const (
	DeepLinkBase   = "https://wa.me/"
	TrackingPath   = "/w"
	MessageOrigin  = "catalogo-simple"
	DefaultProduct = "Producto"
)

// SanitizePhone keeps only the digits of raw.
func SanitizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, raw)
}

type Message struct {
	ProductName  string
	ProductSlug  string
	VariantLabel string
	SiteURL      string
}

// ProductURL is the canonical public URL of a product page, relative when
// no site URL is known.
func ProductURL(siteURL, slug string) string {
	base := strings.TrimRight(siteURL, "/")
	return base + "/producto/" + slug
}

// Text renders the pre-filled chat message, one line per field.
func (m Message) Text() string {
	name := m.ProductName
	if name == "" {
		name = DefaultProduct
	}
	lines := []string{"Hola! Me interesa *" + name + "*"}
	if m.VariantLabel != "" {
		lines = append(lines, "Variante: "+m.VariantLabel)
	}
	lines = append(lines, "Link: "+ProductURL(m.SiteURL, m.ProductSlug))
	lines = append(lines, "Origen: "+MessageOrigin)
	return strings.Join(lines, "\n")
}

// DeepLink returns the wa.me URL for phone with text pre-filled, or "" when
// the phone has no digits.
func DeepLink(phone, text string) string {
	digits := SanitizePhone(phone)
	if digits == "" {
		return ""
	}
	return DeepLinkBase + digits + "?text=" + url.QueryEscape(text)
}

type Tracking struct {
	ProductID    uint
	VariantID    uint
	Source       string
	ProductSlug  string
	ProductName  string
	VariantLabel string
}

// URL returns the relative click-tracking URL. Zero ids and empty labels are omitted.
func (t Tracking) URL() string {
	q := url.Values{}
	q.Set("pid", strconv.FormatUint(uint64(t.ProductID), 10))
	if t.VariantID != 0 {
		q.Set("vid", strconv.FormatUint(uint64(t.VariantID), 10))
	}
	q.Set("src", t.Source)
	q.Set("pslug", t.ProductSlug)
	if t.ProductName != "" {
		q.Set("pname", t.ProductName)
	}
	if t.VariantLabel != "" {
		q.Set("vlabel", t.VariantLabel)
	}
	return TrackingPath + "?" + q.Encode()
}
