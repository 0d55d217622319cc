package cli

import (
	"strings"
	"testing"
)

func TestColorFunctions(t *testing.T) {
	ColorsEnabled = true
	defer func() { ColorsEnabled = false }()

	tests := []struct {
		name     string
		fn       func(string) string
		input    string
		contains string
	}{
		{"Error", Error, "test", red},
		{"Success", Success, "test", green},
		{"Warning", Warning, "test", yellow},
		{"Info", Info, "test", cyan},
		{"Bold", Bold, "test", bold},
		{"ID", ID, "INSTALLFOLDER", magenta},
		{"Placeholder", ID, "TODO_x1y2z3w4", yellow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.fn(tt.input)
			if !strings.Contains(result, tt.contains) {
				t.Errorf("%s(%q) = %q, expected to contain %q", tt.name, tt.input, result, tt.contains)
			}
			if !strings.Contains(result, tt.input) {
				t.Errorf("%s(%q) = %q, expected to contain input text", tt.name, tt.input, result)
			}
			if !strings.HasSuffix(result, reset) {
				t.Errorf("%s(%q) = %q, expected to end with reset code", tt.name, tt.input, result)
			}
		})
	}
}

func TestColorsDisabled(t *testing.T) {
	ColorsEnabled = false

	for name, fn := range map[string]func(string) string{
		"Error":    Error,
		"Success":  Success,
		"Warning":  Warning,
		"Bold":     Bold,
		"Filename": Filename,
		"ID":       ID,
	} {
		if result := fn("test"); result != "test" {
			t.Errorf("%s with colors disabled: expected 'test', got %q", name, result)
		}
	}
	if result := Number(42); result != "42" {
		t.Errorf("Number with colors disabled: expected '42', got %q", result)
	}
}

func TestNoColorEnv(t *testing.T) {
	original := ColorsEnabled
	defer func() { ColorsEnabled = original }()

	t.Setenv("NO_COLOR", "1")
	EnableColors()

	if ColorsEnabled {
		t.Error("expected colors to be disabled when NO_COLOR is set")
	}
}

func TestDisableColors(t *testing.T) {
	ColorsEnabled = true
	DisableColors()
	if ColorsEnabled {
		t.Error("DisableColors should set ColorsEnabled to false")
	}
}
