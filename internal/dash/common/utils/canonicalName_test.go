package utils

import (
	"strings"
	"testing"
)

func TestCanonicalDNSName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "example.com"},
		{"Example.COM.", "example.com"},
		{"  www.example.com..  ", "www.example.com"},
		{"", ""},
		{".", ""},
	}
	for _, tt := range tests {
		if got := CanonicalDNSName(tt.in); got != tt.want {
			t.Errorf("CanonicalDNSName(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "example.com", want: "example.com"},
		{name: "wildcard prefix", in: "*.Example.com", want: "example.com"},
		{name: "leading dot", in: ".reddit.com.", want: "reddit.com"},
		{name: "unicode", in: "bücher.de", want: "xn--bcher-kva.de"},
		{name: "empty", in: "   ", wantErr: true},
		{name: "single label", in: "localhost", wantErr: true},
		{name: "empty label", in: "a..com", wantErr: true},
		{name: "label too long", in: strings.Repeat("a", 64) + ".com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDomain(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidFQDN(t *testing.T) {
	if !IsValidFQDN("a.b") {
		t.Error("expected a.b to be valid")
	}
	if IsValidFQDN("-bad.com") {
		t.Error("expected leading hyphen to be rejected")
	}
	if IsValidFQDN(strings.Repeat("a.", 128) + "com") {
		t.Error("expected >255 chars to be rejected")
	}
}
