package client

import (
	"strings"
)

// Mode selects the response shape of listing and lookup operations.
type Mode int

const (
	// ModeFull returns complete records.
	ModeFull Mode = iota
	// ModeSimple returns records with a reduced field set.
	ModeSimple
	// ModeKeys returns only record keys.
	ModeKeys
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeSimple:
		return "simple"
	case ModeKeys:
		return "keys"
	default:
		return "unknown"
	}
}

// ParseMode maps the simple/keys flag pair onto a Mode. The flags are
// mutually exclusive.
func ParseMode(simple, keys bool) (Mode, error) {
	switch {
	case simple && keys:
		return 0, invalidArgument("simple and keys cannot both be set")
	case simple:
		return ModeSimple, nil
	case keys:
		return ModeKeys, nil
	default:
		return ModeFull, nil
	}
}

// check returns ErrInvalidArgument unless m is one of allowed.
func (m Mode) check(allowed ...Mode) error {
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if m == a {
			return nil
		}
		names = append(names, a.String())
	}
	return invalidArgument("mode %s not supported here (want %s)", m, strings.Join(names, " or "))
}
