package domain

import (
	"fmt"
	"strings"
)

// ListKind identifies one of the filter's domain lists.
//
// blacklist   - exact domain, denied
// whitelist   - exact domain, allowed
// regex_black - regular expression, denied
// regex_white - regular expression, allowed
// wildcard    - domain and all subdomains, denied (stored as regex_black)
type ListKind uint8

const (
	ListBlacklist ListKind = iota
	ListWhitelist
	ListRegexBlack
	ListRegexWhite
	ListWildcard
)

// String returns the stable API name of the kind.
func (k ListKind) String() string {
	switch k {
	case ListBlacklist:
		return "blacklist"
	case ListWhitelist:
		return "whitelist"
	case ListRegexBlack:
		return "regex_black"
	case ListRegexWhite:
		return "regex_white"
	case ListWildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("ListKind(%d)", k)
	}
}

// ParseListKind converts an API name into a ListKind (case-insensitive).
func ParseListKind(s string) (ListKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blacklist":
		return ListBlacklist, nil
	case "whitelist":
		return ListWhitelist, nil
	case "regex_black":
		return ListRegexBlack, nil
	case "regex_white":
		return ListRegexWhite, nil
	case "wildcard":
		return ListWildcard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedListKind, s)
	}
}

// GravityType returns the domainlist.type code used by the list database.
func (k ListKind) GravityType() (int, bool) {
	switch k {
	case ListWhitelist:
		return 0, true
	case ListBlacklist:
		return 1, true
	case ListRegexWhite:
		return 2, true
	case ListRegexBlack, ListWildcard:
		return 3, true
	default:
		return 0, false
	}
}

// ListKindFromGravityType maps a domainlist.type code back to a ListKind.
// Wildcards are indistinguishable from regex_black at this level.
func ListKindFromGravityType(code int) (ListKind, error) {
	switch code {
	case 0:
		return ListWhitelist, nil
	case 1:
		return ListBlacklist, nil
	case 2:
		return ListRegexWhite, nil
	case 3:
		return ListRegexBlack, nil
	default:
		return 0, fmt.Errorf("%w: type code %d", ErrUnsupportedListKind, code)
	}
}
