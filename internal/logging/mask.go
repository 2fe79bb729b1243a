package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

const (
	// MaskChar is the character used for masking.
	MaskChar = "*"
	// URLMaskLength is how many characters to show before masking URLs.
	URLMaskLength = 30
	// DefaultMaskLength is how many mask characters to show.
	DefaultMaskLength = 3
)

// SensitiveFields contains field names that should be masked.
var SensitiveFields = map[string]bool{
	"token":          true,
	"secret":         true,
	"password":       true,
	"key":            true,
	"api_key":        true,
	"apikey":         true,
	"access_token":   true,
	"refresh_token":  true,
	"auth":           true,
	"authorization":  true,
	"bearer":         true,
	"credential":     true,
	"credentials":    true,
	"private":        true,
	"private_key":    true,
	"dsn":            true,
}

// urlPattern matches HTTP(S) URLs.
var urlPattern = regexp.MustCompile(`https?://[^\s"']+`)

// MaskURL masks a URL, showing only the first URLMaskLength characters.
func MaskURL(url string) string {
	if len(url) <= URLMaskLength {
		return url
	}
	return url[:URLMaskLength] + strings.Repeat(MaskChar, DefaultMaskLength)
}

// MaskValue masks a sensitive value completely.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat(MaskChar, min(len(value), 8))
}

// MaskPartial masks a value but shows the first few characters.
func MaskPartial(value string, showChars int) string {
	if len(value) <= showChars {
		return strings.Repeat(MaskChar, len(value))
	}
	return value[:showChars] + strings.Repeat(MaskChar, DefaultMaskLength)
}

// IsSensitiveField checks if a field name indicates sensitive data.
func IsSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)

	// Check exact match
	if SensitiveFields[lower] {
		return true
	}

	// Check if contains sensitive keywords
	for keyword := range SensitiveFields {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return false
}

// dsnPasswordPattern matches the password part of user:password@host URLs.
var dsnPasswordPattern = regexp.MustCompile(`(://[^:/@\s]+:)[^@\s]+@`)

// MaskDSN hides the password in a connection string, keeping the host visible.
func MaskDSN(dsn string) string {
	dsn = dsnPasswordPattern.ReplaceAllString(dsn, "${1}"+strings.Repeat(MaskChar, DefaultMaskLength)+"@")
	if i := strings.Index(dsn, "password="); i >= 0 {
		end := strings.IndexAny(dsn[i:], " &")
		if end < 0 {
			end = len(dsn) - i
		}
		dsn = dsn[:i] + "password=" + strings.Repeat(MaskChar, DefaultMaskLength) + dsn[i+end:]
	}
	return dsn
}

// MaskString scans a string for sensitive patterns and masks them.
func MaskString(s string) string {
	// Mask URLs
	s = urlPattern.ReplaceAllStringFunc(s, func(url string) string {
		// Don't mask localhost URLs
		if strings.Contains(url, "localhost") || strings.Contains(url, "127.0.0.1") {
			return url
		}
		return MaskURL(url)
	})

	return s
}

// maskAttr hides credentials in log records before they are written.
func maskAttr(_ []string, a slog.Attr) slog.Attr {
	if IsSensitiveField(a.Key) {
		return slog.String(a.Key, MaskValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, MaskDSN(MaskString(a.Value.String())))
	}
	return a
}
