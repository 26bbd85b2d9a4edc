// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package intake

import (
	"errors"
	"strings"
	"testing"
)

func TestEmailNormalize(t *testing.T) {
	v := NewEmailValidator(nil, nil)

	tests := []struct {
		name    string
		in      string
		want    string
		wantMsg string
	}{
		{name: "trim and lowercase", in: "  Candidate@ExampleBusiness.com ", want: "candidate@examplebusiness.com"},
		{name: "plus addressing", in: "jane+tax@firm.co.uk", want: "jane+tax@firm.co.uk"},
		{name: "empty", in: "   ", wantMsg: msgEmailRequired},
		{name: "too long", in: strings.Repeat("a", 250) + "@firm.com", wantMsg: msgEmailTooLong},
		{name: "no at", in: "jane.firm.com", wantMsg: msgEmailInvalid},
		{name: "double dot", in: "jane..doe@firm.com", wantMsg: msgEmailInvalid},
		{name: "no dotted domain", in: "jane@localhost", wantMsg: msgEmailInvalid},
		{name: "display name", in: "Jane <jane@firm.com>", wantMsg: msgEmailInvalid},
		{name: "disposable mailinator", in: "jane@mailinator.com", wantMsg: msgEmailDisposable},
		{name: "disposable example", in: "someone@EXAMPLE.com", wantMsg: msgEmailDisposable},
		{name: "placeholder test", in: "test@anydomain.com", wantMsg: msgEmailPlaceholder},
		{name: "placeholder no-reply", in: "No-Reply@firm.com", wantMsg: msgEmailPlaceholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Normalize(tt.in)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Normalize(%q) error: %v", tt.in, err)
				}
				if got != tt.want {
					t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Normalize(%q) error = %v, want *ValidationError", tt.in, err)
			}
			if verr.Message != tt.wantMsg {
				t.Errorf("Normalize(%q) message = %q, want %q", tt.in, verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestEmailValidatorDefaultLists(t *testing.T) {
	v := NewEmailValidator(nil, nil)
	for _, d := range DefaultDisposableDomains {
		if _, err := v.Normalize("jane@" + d); err == nil {
			t.Errorf("disposable domain %s accepted", d)
		}
	}
	for _, l := range DefaultPlaceholderLocals {
		if _, err := v.Normalize(l + "@firm.com"); err == nil {
			t.Errorf("placeholder local part %s accepted", l)
		}
	}
}

func TestEmailValidatorCustomLists(t *testing.T) {
	v := NewEmailValidator([]string{" Burner.io "}, []string{"dummy"})

	if _, err := v.Normalize("jane@burner.io"); err == nil {
		t.Error("configured disposable domain accepted")
	}
	if _, err := v.Normalize("dummy@firm.com"); err == nil {
		t.Error("configured placeholder accepted")
	}
	// Custom lists replace the defaults.
	if _, err := v.Normalize("jane@mailinator.com"); err != nil {
		t.Errorf("default domain rejected with custom list: %v", err)
	}
}
