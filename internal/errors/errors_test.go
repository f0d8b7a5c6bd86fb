package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/storage"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "wrapped error without hint",
			err:      fmt.Errorf("failed to read slot: %w", errors.New("disk full")),
			expected: "Error: failed to read slot: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatAddsHint(t *testing.T) {
	err := fmt.Errorf("request consultation: %w", auth.ErrNotAuthenticated)
	got := Format(err)
	if !strings.HasPrefix(got, "Error: request consultation: ") {
		t.Errorf("Format() = %q, missing prefix", got)
	}
	if !strings.Contains(got, "foodplannery login") {
		t.Errorf("Format() = %q, want login hint", got)
	}
}

func TestHint(t *testing.T) {
	if got := Hint(fmt.Errorf("open: %w", storage.ErrNotInitialized)); !strings.Contains(got, "foodplannery init") {
		t.Errorf("Hint() = %q, want init hint", got)
	}
	if got := Hint(errors.New("plain")); got != "" {
		t.Errorf("Hint() = %q, want empty", got)
	}
}

func TestFormatf(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		args     []interface{}
		expected string
	}{
		{
			name:     "simple message",
			format:   "something went wrong",
			expected: "Error: something went wrong",
		},
		{
			name:     "formatted message",
			format:   "meal not found: %s",
			args:     []interface{}{"abc"},
			expected: "Error: meal not found: abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Formatf(tt.format, tt.args...); got != tt.expected {
				t.Errorf("Formatf() = %q, want %q", got, tt.expected)
			}
		})
	}
}
