package validation

import (
	"errors"
	"testing"
)

func TestValidateURLs(t *testing.T) {
	tests := []struct {
		name         string
		input        []string
		allowPrivate bool
		wantErr      bool
	}{
		{
			name:  "valid single URL",
			input: []string{"https://example.com"},
		},
		{
			name:  "valid multiple URLs",
			input: []string{"https://example.com", "http://golang.org"},
		},
		{
			name:    "invalid scheme",
			input:   []string{"ftp://example.com"},
			wantErr: true,
		},
		{
			name:    "missing host",
			input:   []string{"https:///path"},
			wantErr: true,
		},
		{
			name:    "localhost not allowed",
			input:   []string{"http://localhost:8080"},
			wantErr: true,
		},
		{
			name:    "private IP not allowed",
			input:   []string{"http://192.168.1.10"},
			wantErr: true,
		},
		{
			name:    "loopback IP not allowed",
			input:   []string{"https://127.0.0.1"},
			wantErr: true,
		},
		{
			name:         "loopback allowed when private hosts are enabled",
			input:        []string{"http://127.0.0.1:9000/file"},
			allowPrivate: true,
		},
		{
			name:         "scheme still checked when private hosts are enabled",
			input:        []string{"file:///etc/passwd"},
			allowPrivate: true,
			wantErr:      true,
		},
		{
			name:    "empty slice (no URLs)",
			input:   []string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewURLValidator(10, tt.allowPrivate).ValidateURLs(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateURLs_Limit(t *testing.T) {
	v := NewURLValidator(2, false)
	err := v.ValidateURLs([]string{"https://a.example", "https://b.example", "https://c.example"})
	if !errors.Is(err, ErrTooManyURLs) {
		t.Fatalf("expected ErrTooManyURLs, got %v", err)
	}
}
