package logging

import (
	"testing"

	"relayhq/azrelay/pkg/config"
)

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "api-key header",
			input: "api-key: 0123456789abcdef",
			want:  "api-key: ***",
		},
		{
			name:  "api_key assignment",
			input: "api_key=abcdefgh12345678 rest",
			want:  "api_key=*** rest",
		},
		{
			name:  "bearer token",
			input: "Authorization: Bearer eyJhbGciOi.abc.def",
			want:  "Authorization: Bearer ***",
		},
		{
			name:  "password",
			input: "password=hunter2 user=bob",
			want:  "password: *** user=bob",
		},
		{
			name:  "plain text untouched",
			input: "How can I reduce plastic use?",
			want:  "How can I reduce plastic use?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_CustomPatterns(t *testing.T) {
	r := NewRedactor([]config.RedactPattern{
		{Name: "ticket", Pattern: `TICKET-\d+`, Replacement: "TICKET-?"},
		{Name: "broken", Pattern: `(`, Replacement: "x"},
	})

	if got := r.RedactString("see TICKET-1234"); got != "see TICKET-?" {
		t.Errorf("RedactString() = %q", got)
	}
}

func TestRedactor_AddLiteral(t *testing.T) {
	r := NewRedactor(nil)
	r.AddLiteral("short")
	r.AddLiteral("s3cr3t.with+regex*chars")

	if got := r.RedactString("short value"); got != "short value" {
		t.Errorf("short literal should be ignored, got %q", got)
	}
	if got := r.RedactString("x s3cr3t.with+regex*chars y"); got != "x *** y" {
		t.Errorf("RedactString() = %q, want %q", got, "x *** y")
	}
}

func TestRedactor_IsSensitiveKey(t *testing.T) {
	r := NewRedactor(nil)

	for _, key := range []string{"api_key", "API-KEY", "client_secret", "Authorization", "refresh_token"} {
		if !r.IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = false, want true", key)
		}
	}
	for _, key := range []string{"deployment", "api_version", "status", "body"} {
		if r.IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = true, want false", key)
		}
	}
}

func TestRedactAPIKey(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"abc":              "***",
		"abcdefghijklmnop": "abcd***",
	}
	for in, want := range tests {
		if got := RedactAPIKey(in); got != want {
			t.Errorf("RedactAPIKey(%q) = %q, want %q", in, got, want)
		}
	}
}
