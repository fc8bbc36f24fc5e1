package leadgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Padaria São João", "padaria sao joao"},
		{"  PADARIA   sao joão ", "padaria sao joao"},
		{"Açaí do Zé", "acai do ze"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NameKey(tt.in), tt.in)
	}
}

func TestSeenSet(t *testing.T) {
	s := NewSeenSet([]string{"Padaria Central", "padaria central", ""})
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("PADARIA CENTRAL"))
	assert.False(t, s.Has("Padaria Nova"))

	assert.True(t, s.Add("Padaria Nova"))
	assert.False(t, s.Add("padaria  nova"))
	assert.False(t, s.Add("  "))
	assert.Equal(t, []string{"Padaria Central", "Padaria Nova"}, s.Names())

	names := s.Names()
	names[0] = "mutated"
	assert.Equal(t, "Padaria Central", s.Names()[0])
}
