package text

import (
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "fits", input: "hello", maxLen: 10, want: "hello"},
		{name: "exact", input: "hello", maxLen: 5, want: "hello"},
		{name: "truncated", input: "hello world", maxLen: 8, want: "hello..."},
		{name: "tiny limit", input: "hello", maxLen: 2, want: "he"},
		{name: "empty", input: "", maxLen: 5, want: ""},
		{name: "multibyte", input: "привет мир", maxLen: 9, want: "привет..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestSenderDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user *models.User
		want string
	}{
		{name: "nil user", user: nil, want: "Unknown"},
		{
			name: "full name",
			user: &models.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Username: "ada"},
			want: "Ada Lovelace",
		},
		{
			name: "first name only",
			user: &models.User{ID: 1, FirstName: "Ada", Username: "ada"},
			want: "Ada",
		},
		{
			name: "username fallback",
			user: &models.User{ID: 1, Username: "ada"},
			want: "@ada",
		},
		{
			name: "id fallback",
			user: &models.User{ID: 42},
			want: "User 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SenderDisplayName(tt.user); got != tt.want {
				t.Errorf("SenderDisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "hello", want: "hello"},
		{name: "crlf", input: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "collapses spaces", input: "a  \t b", want: "a b"},
		{name: "strips control chars", input: "a\x00b\x1Fc", want: "a b c"},
		{name: "zero width space", input: "a\u200Bb", want: "a b"},
		{name: "word joiner removed", input: "a\u2060b", want: "ab"},
		{name: "non-breaking space", input: "a\u00A0b", want: "a b"},
		{name: "excess blank lines", input: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "trims ends", input: "  hello  ", want: "hello"},
		{name: "whitespace only", input: " \n\t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
