// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package intake

import (
	"net/mail"
	"strings"
)

// MaxEmailLength is the longest address accepted, per RFC 5321.
const MaxEmailLength = 254

// DefaultDisposableDomains are throwaway-mailbox providers rejected when no
// list is configured.
var DefaultDisposableDomains = []string{
	"example.com", "example.net", "example.org",
	"mailinator.com", "guerrillamail.com", "sharklasers.com",
	"10minutemail.com", "temp-mail.org", "tempmail.com",
	"trashmail.com", "yopmail.com", "maildrop.cc", "getnada.com",
}

// DefaultPlaceholderLocals are local parts rejected as obviously fake when
// no list is configured.
var DefaultPlaceholderLocals = []string{
	"test", "testing", "fake", "example", "noreply", "no-reply",
}

// Email validation messages.
const (
	msgEmailRequired    = "Email address is required."
	msgEmailTooLong     = "Email address is too long."
	msgEmailInvalid     = "Please enter a valid email address."
	msgEmailDisposable  = "Please use a permanent email address."
	msgEmailPlaceholder = "Please enter your real email address."
)

// EmailValidator normalizes visitor email addresses and rejects disposable
// domains and placeholder local parts.
type EmailValidator struct {
	disposable  map[string]bool
	placeholder map[string]bool
}

// NewEmailValidator builds a validator from deny-lists. Empty lists fall
// back to the defaults.
func NewEmailValidator(disposableDomains, placeholderLocals []string) *EmailValidator {
	if len(disposableDomains) == 0 {
		disposableDomains = DefaultDisposableDomains
	}
	if len(placeholderLocals) == 0 {
		placeholderLocals = DefaultPlaceholderLocals
	}
	return &EmailValidator{
		disposable:  toSet(disposableDomains),
		placeholder: toSet(placeholderLocals),
	}
}

// Normalize trims and lowercases raw and validates the result. The
// returned error is a *ValidationError without a field name.
func (v *EmailValidator) Normalize(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalid("", msgEmailRequired)
	}
	if len(email) > MaxEmailLength {
		return "", invalid("", msgEmailTooLong)
	}
	if !wellFormed(email) {
		return "", invalid("", msgEmailInvalid)
	}

	at := strings.LastIndexByte(email, '@')
	local, domain := email[:at], email[at+1:]
	if v.disposable[domain] {
		return "", invalid("", msgEmailDisposable)
	}
	if v.placeholder[local] {
		return "", invalid("", msgEmailPlaceholder)
	}
	return email, nil
}

// wellFormed accepts bare addr-spec addresses with a dotted domain.
// Display names, comments and quoted local parts are rejected.
func wellFormed(email string) bool {
	if strings.Contains(email, "..") || strings.ContainsAny(email, " \t\"<>()") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") ||
		strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, "-") {
		return false
	}
	return true
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it != "" {
			m[it] = true
		}
	}
	return m
}
