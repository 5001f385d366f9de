package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"asha", "%asha%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\d`, `%c:\\d%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}
