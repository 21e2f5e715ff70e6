package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a relative asset path (image source, page template).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative to the asset root)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateImageSource accepts either an http(s) URL or a safe relative path.
func ValidateImageSource(src string) error {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return ValidateURL(src)
	}
	return ValidatePath(src)
}

// elementIDRegex matches the element ids the portfolio page uses.
var elementIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateElementID validates a DOM element id used to locate a render target.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "element id cannot be empty")
	}
	if !elementIDRegex.MatchString(id) {
		return New(ErrCodeInvalidConfig, "invalid element id: %q", id)
	}
	return nil
}

// ValidateFilterKey rejects filter keys that could never match a tag.
func ValidateFilterKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidFilter, "filter key cannot be empty")
	}
	if strings.ContainsAny(key, ", \t\n") {
		return New(ErrCodeInvalidFilter, "filter key cannot contain separators: %q", key)
	}
	return nil
}
