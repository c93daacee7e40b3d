package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "regular", in: "alice@example.com", want: "a***@example.com"},
		{name: "single_rune_local", in: "a@x.com", want: "***@x.com"},
		{name: "no_at", in: "not-an-email", want: "***"},
		{name: "two_at", in: "a@b@c", want: "***"},
		{name: "empty", in: "", want: "***"},
		{name: "unicode_local", in: "юзер@пример.рф", want: "ю***@пример.рф"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestToken(t *testing.T) {
	require.Equal(t, "[REDACTED_TOKEN]", Token())
}
