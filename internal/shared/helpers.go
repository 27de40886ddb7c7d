// Package shared provides common utility functions used across multiple
// packages in the skill-installer codebase.
package shared

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// NormalizePipName lowercases a Python package name and replaces
// underscores and dots with hyphens, following PEP 503 normalization.
func NormalizePipName(value string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	replacer := strings.NewReplacer("_", "-", ".", "-")
	return replacer.Replace(lower)
}

// ExtractRepoName derives a skill name from a repository link, e.g.
// "https://github.com/someone/weather-skill.git" -> "weather-skill".
func ExtractRepoName(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if parsed, err := url.Parse(link); err == nil && parsed.Path != "" {
		link = parsed.Path
	} else if idx := strings.LastIndex(link, ":"); idx >= 0 {
		// scp-like git@host:owner/repo.git
		link = link[idx+1:]
	}
	name := path.Base(strings.TrimRight(link, "/"))
	name = strings.TrimSuffix(name, ".git")
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
