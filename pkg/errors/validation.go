package errors

import (
	"regexp"
	"strings"
)

// templateNameRegex matches names accepted by the template library:
// letters, digits, dot, dash and underscore, starting with a letter or digit.
var templateNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateTemplateName validates a template library name.
// Names double as file names in the file store, so the rules are
// conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - Only letters, digits, '.', '-' and '_', starting with a letter or digit
//   - No path traversal sequences (..)
func ValidateTemplateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "template name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "template name too long (max 128 characters)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "template name cannot contain '..'")
	}

	if !templateNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid template name: %q", name)
	}

	return nil
}

// ValidateFormat validates an output format name.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of %s)", format, strings.Join(allowed, ", "))
}
