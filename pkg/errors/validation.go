package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// componentNameRegex matches names a CAD host accepts for a component:
// letters, digits, underscore, dash and dot, starting with a letter.
var componentNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// ValidateComponentName validates the identity of the generated component.
// The name is also used as a cache key part and an output file stem, so it is
// kept to a conservative character set.
//
// The validation rules:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters or path separators
func ValidateComponentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "component name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "component name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "component name contains invalid control characters")
		}
	}

	if !componentNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid component name: %q", name)
	}

	return nil
}

// ValidateOutputBase validates the base path used for generated artifacts.
// Absolute paths are allowed here (unlike request paths on the server), but
// traversal sequences and control characters are not.
func ValidateOutputBase(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "output path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateMountStyle reports whether style names one of the supported
// back-plate finishing styles.
func ValidateMountStyle(style string) error {
	switch style {
	case "none", "counterbore", "countersink":
		return nil
	}
	return New(ErrCodeParamRange, "mount_style must be one of none, counterbore, countersink (got %q)", style).
		With("param", "mount_style").With("value", style)
}
