package utils

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
)

// CanonicalDNSName returns a DNS name in canonical form:
// - Lowercased
// - Trimmed of surrounding whitespace
// - No trailing dot
func CanonicalDNSName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// lookup is the IDNA profile used for user-supplied block targets.
var lookup = idna.New(idna.MapForLookup(), idna.Transitional(false), idna.StrictDomainName(false))

// NormalizeDomain turns user input such as "*.Example.COM." or "bücher.de"
// into the ASCII form the filter binary stores ("example.com",
// "xn--bcher-kva.de"). Wildcard prefixes are dropped because wildcard
// blocks already cover subdomains.
func NormalizeDomain(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "*.")
	name = strings.TrimPrefix(name, ".")
	name = CanonicalDNSName(name)
	if name == "" {
		return "", fmt.Errorf("empty domain")
	}
	ascii, err := lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", raw, err)
	}
	if !IsValidFQDN(ascii) {
		return "", fmt.Errorf("invalid domain %q", raw)
	}
	return ascii, nil
}

// IsValidFQDN checks whether name is a plausible fully qualified domain name:
//   - at most 255 characters
//   - at least two labels
//   - each label 1..63 characters
//   - the first label starts with a letter or digit
func IsValidFQDN(name string) bool {
	if len(name) > 255 {
		return false
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) > 63 || len(label) == 0 {
			return false
		}
	}
	first := []rune(labels[0])
	return unicode.IsLetter(first[0]) || unicode.IsDigit(first[0])
}
