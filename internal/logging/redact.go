package logging

import "strings"

// redactedPlaceholder replaces secret values in log output.
const redactedPlaceholder = "[REDACTED]"

// Redact masks a secret for logging, keeping the last four characters so
// operators can tell tokens apart. Short secrets are masked entirely.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return redactedPlaceholder
	}
	return redactedPlaceholder + secret[len(secret)-4:]
}

// RedactURL masks any userinfo or token-looking query values in a URL
// string before it is logged.
func RedactURL(raw string) string {
	if at := strings.Index(raw, "@"); at >= 0 {
		if scheme := strings.Index(raw, "://"); scheme >= 0 && scheme < at {
			return raw[:scheme+3] + redactedPlaceholder + raw[at:]
		}
	}
	return raw
}
