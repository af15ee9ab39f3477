package schema

import (
	"net"
	"net/url"
	"regexp"
	"time"
)

// formatMinExamples is the fewest string examples a field needs before a
// format is considered at all; below this the sample proves nothing.
const formatMinExamples = 3

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type formatMatcher struct {
	name  string
	match func(string) bool
}

// Matchers run in precedence order; the first one clearing the
// confidence threshold wins. Datetime precedes date so a full timestamp
// is never reported as a bare date.
var formatMatchers = []formatMatcher{
	{"datetime", func(s string) bool {
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	}},
	{"date", func(s string) bool {
		_, err := time.Parse("2006-01-02", s)
		return err == nil
	}},
	{"email", emailRe.MatchString},
	{"uri", func(s string) bool {
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
	}},
	{"ip", func(s string) bool {
		return net.ParseIP(s) != nil
	}},
}

// detectFormat returns the inferred format name for the sampled strings,
// or "" when no format clears the threshold.
func detectFormat(samples []string, threshold float64) string {
	if len(samples) < formatMinExamples {
		return ""
	}
	for _, m := range formatMatchers {
		matched := 0
		for _, s := range samples {
			if m.match(s) {
				matched++
			}
		}
		if float64(matched)/float64(len(samples)) >= threshold {
			return m.name
		}
	}
	return ""
}
