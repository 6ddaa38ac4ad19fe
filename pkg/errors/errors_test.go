package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeUnknownDependency, "unknown dependency %q", "t9")

	if err.Code != ErrCodeUnknownDependency {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUnknownDependency)
	}

	if err.Message != `unknown dependency "t9"` {
		t.Errorf("Message = %v, want %v", err.Message, `unknown dependency "t9"`)
	}

	expected := `UNKNOWN_DEPENDENCY: unknown dependency "t9"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("bare \" in non-quoted field")
	err := Wrap(ErrCodeMalformedInput, cause, "line %d", 3)

	if err.Code != ErrCodeMalformedInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMalformedInput)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeCycleDetected, "test"),
			code:     ErrCodeCycleDetected,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeCycleDetected, "test"),
			code:     ErrCodeDuplicateID,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeMalformedInput, New(ErrCodeEmptyText, "inner"), "outer"),
			code:     ErrCodeMalformedInput,
			expected: true,
		},
		{
			name:     "fmt wrapped error",
			err:      fmtWrap(New(ErrCodeDuplicateID, "dup")),
			code:     ErrCodeDuplicateID,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeEmptyText,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeEmptyText,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("import"), err)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnknownTask, "test"),
			expected: ErrCodeUnknownTask,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "empty text",
			err:      New(ErrCodeEmptyText, "task text is empty"),
			expected: "Please enter a task name",
		},
		{
			name:     "with detail",
			err:      New(ErrCodeDuplicateID, `id "t1" appears twice`),
			expected: `The file contains two tasks with the same id: id "t1" appears twice`,
		},
		{
			name:     "no detail",
			err:      &Error{Code: ErrCodeCycleDetected},
			expected: "That dependency would create a cycle",
		},
		{
			name:     "unknown code",
			err:      New(Code("OTHER"), "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestImportErrorsHaveDistinctSummaries(t *testing.T) {
	codes := []Code{
		ErrCodeEmptyText,
		ErrCodeUnknownDependency,
		ErrCodeUnknownTask,
		ErrCodeDuplicateID,
		ErrCodeCycleDetected,
		ErrCodeSelfDependency,
		ErrCodeMalformedInput,
		ErrCodeInvalidFormat,
	}

	seen := make(map[string]Code)
	for _, code := range codes {
		s := Summary(code)
		if s == "" {
			t.Errorf("Summary(%s) is empty", code)
			continue
		}
		if prev, ok := seen[s]; ok {
			t.Errorf("Summary(%s) duplicates Summary(%s): %q", code, prev, s)
		}
		seen[s] = code
	}
}
