package errors

import (
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "tree.png", false},
		{"nested", "images/tree.png", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "images/../../secret", true},
		{"backslash", "images\\tree.png", true},
		{"control char", "tree\x01.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateImageSource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative path", "images/mountain.png", false},
		{"https", "https://example.com/tree.png", false},
		{"http", "http://localhost:8080/images/tree.png", false},
		{"ftp", "ftp://example.com/tree.png", true},
		{"empty", "", true},
		{"traversal", "../tree.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageSource(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateElementID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "container", false},
		{"dashed", "art-wrapper-2", false},
		{"empty", "", true},
		{"leading digit", "2container", true},
		{"selector", "#container", true},
		{"space", "art wrapper", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElementID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElementID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilterKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"all", "all", false},
		{"tag", "go", false},
		{"blank", "  ", true},
		{"comma", "go,rust", true},
		{"space", "machine learning", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilterKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilterKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
