package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

const (
	MaxImageSize = 10 << 20 // 10 MB
	MaxAudioSize = 50 << 20 // 50 MB
	MaxTextSize  = 1 << 20  // 1 MB raw body
	MaxTextChars = 10000
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
}

// ValidateImageUpload checks extension and size of an uploaded handwriting image
func ValidateImageUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return fmt.Errorf("unsupported image format: %s (allowed: jpg, jpeg, png, bmp, tiff, webp)", ext)
	}
	if size > MaxImageSize {
		return fmt.Errorf("image exceeds maximum size of %d bytes", MaxImageSize)
	}
	return nil
}

// ValidateAudioUpload checks extension and size of an uploaded speech recording
func ValidateAudioUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !audioExtensions[ext] {
		return fmt.Errorf("unsupported audio format: %s (allowed: wav, mp3, flac, ogg, m4a)", ext)
	}
	if size > MaxAudioSize {
		return fmt.Errorf("audio exceeds maximum size of %d bytes", MaxAudioSize)
	}
	return nil
}

// SanitizeText strips control characters and caps length of writing samples
func SanitizeText(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	out := strings.TrimSpace(result.String())
	if len(out) > MaxTextChars {
		out = out[:MaxTextChars]
	}
	return out
}

// ValidateTenantID validates tenant ID format
func ValidateTenantID(tenant string) error {
	if tenant == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, tenant)
	if !matched {
		return fmt.Errorf("invalid tenant ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateUserID validates the optional user identifier attached to a session
func ValidateUserID(userID string) error {
	if userID == "" {
		return nil // Optional field
	}

	pattern := `^[a-zA-Z0-9_.@-]{1,128}$`
	matched, _ := regexp.MatchString(pattern, userID)
	if !matched {
		return fmt.Errorf("invalid user ID format")
	}

	return nil
}

// ValidateSessionID validates screening session ID format
func ValidateSessionID(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	// UUID with kind suffix: uuid-screening
	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}-.+$`
	matched, _ := regexp.MatchString(pattern, sessionID)
	if !matched {
		return fmt.Errorf("invalid session ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidateDays validates days parameter
func ValidateDays(days int) int {
	if days <= 0 {
		return 7 // default
	}
	if days > 365 {
		return 365 // max 1 year
	}
	return days
}
