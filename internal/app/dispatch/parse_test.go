package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		bot  string
		want Invocation
		ok   bool
	}{
		{"plain command", "/ping", "", Invocation{Name: "ping", Args: []string{}}, true},
		{"arguments", "/download  https://example.com/a.mp4 hd", "", Invocation{Name: "download", Args: []string{"https://example.com/a.mp4", "hd"}}, true},
		{"lower-cased", "/HeLp Media", "", Invocation{Name: "help", Args: []string{"Media"}}, true},
		{"own bot suffix", "/start@HyperGiga_Bot", "hypergiga_bot", Invocation{Name: "start", Args: []string{}}, true},
		{"suffix without configured bot", "/start@any_bot", "", Invocation{Name: "start", Args: []string{}}, true},
		{"other bot", "/start@other_bot", "hypergiga_bot", Invocation{}, false},
		{"leading spaces", "   /me quota", "", Invocation{}, false},
		{"leading newline", "\n/ping", "", Invocation{}, false},
		{"plain text", "hello /ping", "", Invocation{}, false},
		{"bare slash", "/", "", Invocation{}, false},
		{"only suffix", "/@hypergiga_bot", "hypergiga_bot", Invocation{}, false},
		{"empty", "", "", Invocation{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.text, tt.bot)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
