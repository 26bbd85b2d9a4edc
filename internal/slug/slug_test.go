// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Tax Season 2026", want: "tax-season-2026"},
		{name: "single word", input: "Members", want: "members"},
		{name: "punctuation", input: "Who We Are, and Why!", want: "who-we-are-and-why"},
		{name: "ampersand", input: "Tax & Accounting", want: "tax-accounting"},
		{name: "apostrophe", input: "Owner's Guide", want: "owners-guide"},
		{name: "slash removed", input: "Payroll/HR", want: "payrollhr"},
		{name: "accents folded", input: "Résumé Review", want: "resume-review"},
		{name: "more accents", input: "Crème Brûlée Façade", want: "creme-brulee-facade"},
		{name: "non latin dropped", input: "Services 服务", want: "services"},
		{name: "emoji dropped", input: "Join Our Team 🚀", want: "join-our-team"},
		{name: "tabs and newlines", input: "How\tIt\nWorks", want: "how-it-works"},
		{name: "leading and trailing hyphens", input: "--about--", want: "about"},
		{name: "consecutive hyphens", input: "a---b", want: "a-b"},
		{name: "empty", input: "", want: ""},
		{name: "only symbols", input: "!@#$%", want: ""},
		{name: "numbers", input: "Version 2.0.1", want: "version-201"},
		{name: "date-like", input: "2026-04-15", want: "2026-04-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "client-consultation", "a", "123"} {
		if got := Generate(s); got != s {
			t.Errorf("Generate(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestGenerate_MaxLength(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "tax "
	}
	got := Generate(long)
	if len(got) > MaxLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxLength)
	}
	if got[len(got)-1] == '-' {
		t.Errorf("truncated slug ends with a hyphen: %q", got)
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "about", want: "about"},
		{input: "Tax Solutions/Services", want: "tax-solutions/services"},
		{input: "/members//faq/", want: "members/faq"},
		{input: "///", want: ""},
	}
	for _, tt := range tests {
		if got := Path(tt.input); got != tt.want {
			t.Errorf("Path(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "about", want: true},
		{input: "tax-solutions/services", want: true},
		{input: "members/faq", want: true},
		{input: "", want: false},
		{input: "About", want: false},
		{input: "/about", want: false},
		{input: "about/", want: false},
		{input: "a//b", want: false},
		{input: "-about", want: false},
		{input: "hello world", want: false},
		{input: "../etc", want: false},
	}
	for _, tt := range tests {
		if got := Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
