package validation

import (
	"strings"
	"testing"
)

func TestValidateVideoID(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "empty ID", id: "", wantErr: true},
		{name: "valid ID", id: "dQw4w9WgXcQ", wantErr: false},
		{name: "valid ID with underscore and dash", id: "a_b-C_d-E_f", wantErr: false},
		{name: "too short", id: "abc123", wantErr: true},
		{name: "too long", id: "dQw4w9WgXcQdQw4w9WgXcQ", wantErr: true},
		{name: "invalid characters", id: "dQw4w9WgXc!", wantErr: true},
		{name: "full URL instead of ID", id: "https://youtu.be/dQw4w9WgXcQ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVideoID(tt.id)
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSection(t *testing.T) {
	validator := NewValidator()

	if err := validator.ValidateSection(""); err != nil {
		t.Errorf("empty section must be allowed (default applies later): %v", err)
	}
	if err := validator.ValidateSection("4-YT-Su"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validator.ValidateSection(strings.Repeat("x", 200)); err == nil {
		t.Error("expected error for oversized section key")
	}
}
