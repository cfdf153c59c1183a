package logger

import (
	"log/slog"
	"strings"
)

// Key fragments whose values are never logged in clear. hashedPassword
// and the token header both fall under these.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
}

// Keys that contain a sensitive fragment but are safe to log.
var allowedKeys = map[string]bool{
	"tokens_issued": true,
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if v := a.Value.String(); v != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}
	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if allowedKeys[keyLower] {
		return false
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// MaskID shortens an identifier to its first and last three characters,
// enough to correlate log lines without exposing a usable credential.
func MaskID(id string) string {
	if len(id) <= 8 {
		return "***"
	}
	return id[:3] + "..." + id[len(id)-3:]
}
