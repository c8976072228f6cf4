package storage

import "testing"

func TestFlatName(t *testing.T) {
	tests := map[string]bool{
		"metapod.png":         true,
		"Mr. Mime.png":        true,
		"":                    false,
		".":                   false,
		"..":                  false,
		"gen1/metapod.png":    false,
		`gen1\metapod.png`:    false,
		"folder/":             false,
		"../escape/ditto.png": false,
	}
	for name, want := range tests {
		if got := flatName(name); got != want {
			t.Errorf("flatName(%q) = %v, want %v", name, got, want)
		}
	}
}
