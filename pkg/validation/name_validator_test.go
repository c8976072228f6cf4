package validation

import (
	"strings"
	"testing"
)

func TestHasImageExtension(t *testing.T) {
	tests := map[string]bool{
		"metapod.png":    true,
		"Pikachu.JPG":    true,
		"eevee.jpeg":     true,
		"ditto.gif":      true,
		"onix.bmp":       true,
		"mew.webp":       true,
		"zubat.qoi":      true,
		"notes.txt":      false,
		"README":         false,
		"archive.png.gz": false,
	}
	for name, want := range tests {
		if got := HasImageExtension(name); got != want {
			t.Errorf("HasImageExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestValidateImageName(t *testing.T) {
	v := NewNameValidator()

	for _, name := range []string{"metapod.png", "Mr. Mime.PNG", "porygon-z.webp"} {
		if err := v.ValidateImageName(name); err != nil {
			t.Errorf("Expected %q to be valid, got %v", name, err)
		}
	}

	tests := []struct {
		name    string
		message string
	}{
		{"", "Image name cannot be empty"},
		{"../secret.png", "Image name must not contain path elements"},
		{"sub/dir.png", "Image name must not contain path elements"},
		{`sub\dir.png`, "Image name must not contain path elements"},
		{"a..png", "Image name must not contain path elements"},
		{"nul\x00.png", "Image name contains invalid characters"},
		{"notes.txt", "Unsupported image extension"},
		{strings.Repeat("a", 300) + ".png", "Image name too long"},
	}
	for _, tt := range tests {
		err := v.ValidateImageName(tt.name)
		if err == nil {
			t.Errorf("Expected %q to fail validation", tt.name)
			continue
		}
		if msg := appErrorMessage(t, err); msg != tt.message {
			t.Errorf("%q: expected %q, got %q", tt.name, tt.message, msg)
		}
	}
}
