// Package phone validates free-text phone strings and builds outbound
// messaging links.
package phone

import (
	"net/url"
	"slices"
	"strings"
)

// MinDigits is the shortest digit string accepted as a phone number.
const MinDigits = 8

// notFound lists provider markers meaning "no phone". Compared lower-case.
var notFound = []string{
	"not found",
	"não encontrado",
	"nao encontrado",
	"no encontrado",
	"n/a",
	"none",
	"null",
	"sem telefone",
	"unknown",
}

// IsSentinel reports whether raw is a "not found" marker rather than data.
func IsSentinel(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	return slices.Contains(notFound, s)
}

// Digits strips everything but ASCII digits.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the digit string for raw and true, or "" and false when
// raw is a sentinel, has fewer than MinDigits digits, or is one digit
// repeated ("00000000"). The digits are returned as-is; no country code is
// inferred.
func Normalize(raw string) (string, bool) {
	if IsSentinel(raw) {
		return "", false
	}
	d := Digits(raw)
	if len(d) < MinDigits || placeholder(d) {
		return "", false
	}
	return d, true
}

// placeholder reports whether d is a single digit repeated.
func placeholder(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

// IsMobile reports whether digits look like a Brazilian mobile number: an
// 11-digit local number (area code + 9 + eight digits), optionally prefixed
// by the 55 country code.
func IsMobile(digits string) bool {
	switch len(digits) {
	case 11:
		return digits[2] == '9'
	case 13:
		return strings.HasPrefix(digits, "55") && digits[4] == '9'
	default:
		return false
	}
}

// Region is a dialing rule for outbound links: numbers whose length is one of
// LocalLengths are treated as national and get CountryCode prepended.
type Region struct {
	CountryCode  string
	LocalLengths []int
}

// Brazil prefixes 55 to 10- and 11-digit national numbers.
var Brazil = Region{CountryCode: "55", LocalLengths: []int{10, 11}}

// NoRegion leaves numbers untouched.
var NoRegion = Region{}

// Dial returns digits in international form according to the rule.
func (r Region) Dial(digits string) string {
	if r.CountryCode == "" || !slices.Contains(r.LocalLengths, len(digits)) {
		return digits
	}
	return r.CountryCode + digits
}

// WhatsAppLink returns a wa.me deep link for digits with message pre-filled.
// It returns "" when digits is not a valid phone.
func (r Region) WhatsAppLink(digits, message string) string {
	d, ok := Normalize(digits)
	if !ok {
		return ""
	}
	link := "https://wa.me/" + r.Dial(d)
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}
