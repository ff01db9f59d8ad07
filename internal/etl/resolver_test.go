package etl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BartekS5/legacysync/internal/legacy"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		row        legacy.Row
		candidates []string
		want       string
		found      bool
	}{
		{
			name:       "exact match beats case-insensitive",
			row:        legacy.NewRow("Login", "upper", "login", "lower"),
			candidates: []string{"login"},
			want:       "lower", found: true,
		},
		{
			name:       "earlier candidate wins over row order",
			row:        legacy.NewRow("USUARIO", "from-usuario", "Login", "from-login"),
			candidates: []string{"login", "user", "usuario"},
			want:       "from-login", found: true,
		},
		{
			name:       "case-insensitive match",
			row:        legacy.NewRow("NOME", "Maria"),
			candidates: []string{"nome"},
			want:       "Maria", found: true,
		},
		{
			name:       "null falls through to next candidate",
			row:        legacy.NewRow("email", nil, "mail", "m@x.com"),
			candidates: []string{"email", "mail"},
			want:       "m@x.com", found: true,
		},
		{
			name:       "null exact cell falls back to folded column",
			row:        legacy.NewRow("login", nil, "LOGIN", "jsilva"),
			candidates: []string{"login"},
			want:       "jsilva", found: true,
		},
		{
			name:       "empty string is not a value",
			row:        legacy.NewRow("login", "", "user", "u1"),
			candidates: []string{"login", "user"},
			want:       "u1", found: true,
		},
		{
			name:       "numeric cell is rendered as text",
			row:        legacy.NewRow("id", int64(42)),
			candidates: []string{"login", "id"},
			want:       "42", found: true,
		},
		{
			name:       "nothing matches",
			row:        legacy.NewRow("foo", "bar"),
			candidates: []string{"login"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.row, tt.candidates...)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
