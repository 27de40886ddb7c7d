package adapters

import (
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
}

func parseTimeFlexible(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// canonicalTimestamp rewrites a manifest timestamp as UTC RFC 3339.
// Values that do not parse are kept as written.
func canonicalTimestamp(value string) string {
	parsed := parseTimeFlexible(value)
	if parsed.IsZero() {
		return strings.TrimSpace(value)
	}
	return parsed.Format(time.RFC3339)
}
