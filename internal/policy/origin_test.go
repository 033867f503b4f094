package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowOrigin(t *testing.T) {
	cases := []struct {
		name     string
		origin   string
		host     string
		allowAny bool
		want     bool
	}{
		{"no origin", "", "bots.example:3007", false, true},
		{"same host", "https://bots.example:3007", "bots.example:3007", false, true},
		{"other host", "https://evil.example", "bots.example:3007", false, false},
		{"loopback ports differ", "http://localhost:5173", "127.0.0.1:3007", false, true},
		{"non-web scheme", "file://bots.example:3007", "bots.example:3007", false, false},
		{"garbage", "::not a url", "bots.example", false, false},
		{"allow any", "https://evil.example", "bots.example", true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AllowOrigin(tc.origin, tc.host, tc.allowAny))
		})
	}
}
