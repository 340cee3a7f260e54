package handoff

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// ParamAutoStart marks a location as "bootstrap from a handoff".
	ParamAutoStart = "autostart"
	// ParamKey carries the handoff slot key.
	ParamKey = "handoff"
)

// Location is a parsed session location.
type Location struct {
	AutoStart bool
	Key       string
}

// BuildLocation returns base with the auto-start marker and slot key set.
func BuildLocation(base, key string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base location %q: %w", base, err)
	}
	q := u.Query()
	q.Set(ParamAutoStart, "true")
	q.Set(ParamKey, key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseLocation reads the auto-start marker and key from a location.
// A location without the marker parses to AutoStart=false.
func ParseLocation(s string) (Location, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", s, err)
	}
	q := u.Query()

	var loc Location
	if v := q.Get(ParamAutoStart); v != "" {
		loc.AutoStart, err = strconv.ParseBool(v)
		if err != nil {
			return Location{}, fmt.Errorf("invalid %s value %q: %w", ParamAutoStart, v, err)
		}
	}
	loc.Key = q.Get(ParamKey)

	if loc.AutoStart && loc.Key == "" {
		return Location{}, fmt.Errorf("location %q has %s set but no %s key", s, ParamAutoStart, ParamKey)
	}
	return loc, nil
}
