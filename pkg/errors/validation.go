package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
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

// workspaceNameRegex matches names usable as a file basename and a Redis key suffix.
var workspaceNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateWorkspaceName validates a workspace name.
// Names become file basenames, so they may not contain separators or start with a dot.
func ValidateWorkspaceName(name string) error {
	if err := ValidatePath(name); err != nil {
		return err
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidPath, "workspace name too long (max 64 characters)")
	}
	if !workspaceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPath, "invalid workspace name: %q", name)
	}
	return nil
}

// ValidateTaskID checks that an id can be written to both file formats unchanged.
// Ids may not be empty or padded with whitespace, and may not contain the CSV
// delimiters, quotes, or line breaks.
func ValidateTaskID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeMalformedInput, "task id cannot be empty")
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeMalformedInput, "task id %q has surrounding whitespace", id)
	}
	if strings.ContainsAny(id, ";,\"\r\n") {
		return New(ErrCodeMalformedInput, "task id %q contains a reserved character", id)
	}
	return nil
}
