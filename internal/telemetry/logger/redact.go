package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()

		// Value shape first: a bearer header or JWT is masked under any key.
		if masked, ok := maskCredential(strVal); ok {
			return slog.String(a.Key, masked)
		}

		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskCredential masks bearer headers and JWTs, keeping a short hint.
func maskCredential(value string) (string, bool) {
	if rest, ok := strings.CutPrefix(value, "Bearer "); ok {
		return "Bearer " + maskValue(rest), true
	}
	if IsJWT(value) {
		return maskValue(value), true
	}
	return "", false
}

// maskValue keeps the first and last 3 characters of long values.
func maskValue(value string) string {
	if len(value) <= 12 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// IsJWT reports whether value looks like a compact JWS (three base64url
// segments with a JSON header).
func IsJWT(value string) bool {
	if !strings.HasPrefix(value, "eyJ") {
		return false
	}
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts[:2] {
		if p == "" {
			return false
		}
	}
	return true
}

// RedactString masks value if it looks like a credential.
func RedactString(value string) string {
	if masked, ok := maskCredential(value); ok {
		return masked
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
