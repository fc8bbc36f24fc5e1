package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeReply(t *testing.T) {
	objectsOnly := func(raw json.RawMessage) bool { return len(raw) > 0 && raw[0] == '{' }

	tests := []struct {
		name   string
		text   string
		accept func(json.RawMessage) bool
		want   string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", nil, `{"a":1}`},
		{"plain fence", "```\n[1,2]\n```", nil, `[1,2]`},
		{"whole reply", `  {"a":1}  `, nil, `{"a":1}`},
		{"prose around object", `Resposta: {"a":1} fim`, nil, `{"a":1}`},
		{"trailing citation ignored", "[{\"a\":1}]\nFontes: [1]", nil, `[{"a":1}]`},
		{"rejected candidate moves on", `Veja [1] e {"a":[2]}`, objectsOnly, `{"a":[2]}`},
		{"unterminated fence", "```json\n{\"a\":1}\n", nil, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accept := tt.accept
			if accept == nil {
				accept = func(json.RawMessage) bool { return true }
			}
			var got string
			ok := DecodeReply(tt.text, func(raw json.RawMessage) bool {
				if !accept(raw) {
					return false
				}
				got = string(raw)
				return true
			})
			assert.True(t, ok)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestDecodeReply_NothingAccepted(t *testing.T) {
	for _, text := range []string{"", "nada", "{[}]]{{"} {
		assert.False(t, DecodeReply(text, func(json.RawMessage) bool { return true }), text)
	}
	assert.False(t, DecodeReply("[1] [2]", func(json.RawMessage) bool { return false }))
}
