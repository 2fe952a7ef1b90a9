// Package timestamp parses human-entered video offsets ("83", "1:23",
// "1:23:45") into second counts, bounded by a configured maximum duration.
package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Accepted grammars, tried in order: plain seconds (optionally fractional),
// MM:SS, HH:MM:SS. Minute and second fields must stay below 60 so entries
// like "1:60" are rejected rather than silently carried over.
var (
	secondsRe = regexp.MustCompile(`^(\d+)(\.\d+)?$`)
	minSecRe  = regexp.MustCompile(`^(\d+):(\d{2})$`)
	hmsRe     = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})$`)
)

// DefaultMaxBatch caps timestamps per batch when the parser sets no bound
// of its own.
const DefaultMaxBatch = 50

// Stamp is one parsed timestamp: the spec as the user wrote it plus the
// offset it denotes. Downstream naming uses the spec, seeking uses seconds.
type Stamp struct {
	Spec    string
	Seconds float64
}

// Parser validates timestamp specs against a maximum duration.
type Parser struct {
	// MaxDuration is the largest accepted offset in seconds. Zero or
	// negative disables the bound.
	MaxDuration float64

	// MaxBatch caps entries per batch. Zero or negative means
	// DefaultMaxBatch.
	MaxBatch int
}

func (p Parser) maxBatch() int {
	if p.MaxBatch > 0 {
		return p.MaxBatch
	}
	return DefaultMaxBatch
}

// Parse converts a single spec into seconds. The error, when non-nil,
// carries a human-readable reason.
func (p Parser) Parse(spec string) (float64, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return 0, fmt.Errorf("timestamp is required")
	}

	var seconds float64
	switch {
	case secondsRe.MatchString(s):
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q: %v", spec, err)
		}
		seconds = v
	case minSecRe.MatchString(s):
		m := minSecRe.FindStringSubmatch(s)
		mins, _ := strconv.Atoi(m[1])
		secs, _ := strconv.Atoi(m[2])
		if secs >= 60 {
			return 0, fmt.Errorf("invalid timestamp %q: seconds must be below 60", spec)
		}
		seconds = float64(mins*60 + secs)
	case hmsRe.MatchString(s):
		m := hmsRe.FindStringSubmatch(s)
		hours, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		secs, _ := strconv.Atoi(m[3])
		if mins >= 60 || secs >= 60 {
			return 0, fmt.Errorf("invalid timestamp %q: minutes and seconds must be below 60", spec)
		}
		seconds = float64(hours*3600 + mins*60 + secs)
	default:
		return 0, fmt.Errorf("invalid timestamp format %q: use 30, 1:23, or 1:23:45", spec)
	}

	if p.MaxDuration > 0 && seconds > p.MaxDuration {
		return 0, fmt.Errorf("timestamp %q exceeds maximum duration (%.0fs)", spec, p.MaxDuration)
	}
	return seconds, nil
}

// ParseBatch parses each spec independently: one bad entry never discards its
// siblings. Both the valid seconds and the per-entry errors are returned.
func (p Parser) ParseBatch(specs []string) ([]Stamp, []error) {
	if len(specs) == 0 {
		return nil, []error{fmt.Errorf("at least one timestamp is required")}
	}
	if max := p.maxBatch(); len(specs) > max {
		return nil, []error{fmt.Errorf("too many timestamps (max %d)", max)}
	}

	var (
		valid []Stamp
		errs  []error
	)
	for i, spec := range specs {
		seconds, err := p.Parse(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("timestamp %d: %w", i+1, err))
			continue
		}
		valid = append(valid, Stamp{Spec: strings.TrimSpace(spec), Seconds: seconds})
	}
	return valid, errs
}
