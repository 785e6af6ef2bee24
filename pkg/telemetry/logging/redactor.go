package logging

import (
	"regexp"
	"strings"

	"mercator-hq/converter/pkg/config"
)

// Redactor masks subscriber identifiers and secrets in log values.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
	mask        func(string) string
}

// Built-in pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
	PatternDSNPassword = "dsn_password"
	PatternEmail       = "email"
	PatternSubscriber  = "subscriber_id"
)

// Values logged under these keys are masked regardless of content.
// Customer fields match exactly; credential names match as substrings.
var (
	customerKeys = []string{
		"msisdn", "imei", "imsi",
		"full_name", "address", "date_of_birth", "customer_id",
	}
	credentialKeys = []string{
		"password", "passwd", "secret", "token", "authorization",
		"api_key", "apikey", "dsn",
	}
)

// NewRedactor creates a Redactor with the built-in patterns followed by
// custom patterns. Invalid custom patterns are skipped; Validate rejects
// them before a logger is built.
func NewRedactor(custom []config.RedactPattern) *Redactor {
	r := &Redactor{}

	r.add(PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***", nil)
	r.add(PatternPassword, `(password|passwd|pwd)[:=]\s*[^\s&]+`, "$1=***", nil)
	r.add(PatternDSNPassword, `(://[^:/@\s]+:)[^@\s]+@`, "${1}***@", nil)
	r.add(PatternEmail, `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "", RedactEmail)
	// MSISDN, IMSI and IMEI are 8 to 15 digit runs.
	r.add(PatternSubscriber, `\+?\b\d{8,15}\b`, "", MaskDigits)

	for _, p := range custom {
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

func (r *Redactor) add(name, expr, replacement string, mask func(string) string) {
	r.patterns = append(r.patterns, &redactPattern{
		name:        name,
		regex:       regexp.MustCompile(expr),
		replacement: replacement,
		mask:        mask,
	})
}

// RedactString applies every pattern, in order, to value.
func (r *Redactor) RedactString(value string) string {
	if r == nil || value == "" {
		return value
	}

	for _, p := range r.patterns {
		if p.mask != nil {
			value = p.regex.ReplaceAllStringFunc(value, p.mask)
			continue
		}
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactField masks value entirely when key is sensitive, and otherwise
// applies the patterns.
func (r *Redactor) RedactField(key, value string) string {
	if r == nil {
		return value
	}
	if r.IsSensitiveKey(key) {
		return redactValue(value)
	}
	return r.RedactString(value)
}

// RedactArgs redacts variadic key/value log arguments.
func (r *Redactor) RedactArgs(args ...any) []any {
	if r == nil || len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		key, _ := redacted[i-1].(string)
		switch v := redacted[i].(type) {
		case string:
			redacted[i] = r.RedactField(key, v)
		default:
			if r.IsSensitiveKey(key) {
				redacted[i] = "***"
			}
		}
	}

	return redacted
}

// IsSensitiveKey reports whether key names customer data or a credential.
// Matching ignores case, spaces and dashes, so "FULL NAME" and
// "date-of-birth" are both recognised.
func (r *Redactor) IsSensitiveKey(key string) bool {
	normalized := strings.ToLower(key)
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	for _, k := range customerKeys {
		if normalized == k {
			return true
		}
	}
	for _, k := range credentialKeys {
		if strings.Contains(normalized, k) {
			return true
		}
	}
	return false
}

// redactValue keeps a short prefix of long values as a debugging hint.
func redactValue(v string) string {
	if v == "" {
		return ""
	}
	runes := []rune(v)
	if len(runes) <= 4 {
		return "***"
	}
	return string(runes[:2]) + "***"
}

// MaskDigits keeps the last four digits of an identifier.
func MaskDigits(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// RedactEmail keeps the first character of the local part and the domain.
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	if at == 0 {
		return "***" + email
	}
	return email[:1] + "***" + email[at:]
}
