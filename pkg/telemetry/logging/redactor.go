package logging

import (
	"regexp"
	"strings"
	"sync"

	"relayhq/azrelay/pkg/config"
)

// Redactor removes credentials from log output. It is safe for concurrent
// use; literals can be added while loggers are writing.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternLiteral     = "literal"
)

// minLiteralLength guards against redacting every occurrence of a short
// common string when a test or placeholder key is configured.
const minLiteralLength = 8

// NewRedactor creates a Redactor with the built-in patterns followed by
// customPatterns. Invalid custom patterns are skipped; config validation
// reports them earlier.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{}
	r.addDefaultPatterns()

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

// addDefaultPatterns adds built-in redaction patterns.
func (r *Redactor) addDefaultPatterns() {
	defaults := []struct {
		name        string
		regex       string
		replacement string
	}{
		// "api-key: abc", "api_key=abc", "apikey abc"
		{PatternAPIKey, `(?i)(api[-_]?key["']?\s*[:=]?\s*["']?)[A-Za-z0-9\-_.]{8,}`, "${1}***"},
		{PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"},
		{PatternPassword, `(?i)(password|passwd|pwd)[:=]\s*[^\s]+`, "$1: ***"},
	}

	for _, p := range defaults {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
}

// AddLiteral redacts every occurrence of secret. Values shorter than eight
// characters are ignored.
func (r *Redactor) AddLiteral(secret string) {
	secret = strings.TrimSpace(secret)
	if len(secret) < minLiteralLength {
		return
	}
	literal := regexp.MustCompile(regexp.QuoteMeta(secret))

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patterns {
		if p.name == PatternLiteral && p.regex.String() == literal.String() {
			return
		}
	}
	// Literals run first so a key is removed before partial patterns
	// can split it.
	r.patterns = append([]*redactPattern{{
		name:        PatternLiteral,
		regex:       literal,
		replacement: "***",
	}}, r.patterns...)
}

// RedactString redacts credentials from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// IsSensitiveKey checks if a key name indicates sensitive data.
func (r *Redactor) IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "passwd", "pwd",
		"secret", "token", "api_key", "apikey", "api-key",
		"authorization", "private_key", "privatekey",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// RedactAPIKey redacts an API key, keeping only a prefix.
func RedactAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	return apiKey[:4] + "***"
}
