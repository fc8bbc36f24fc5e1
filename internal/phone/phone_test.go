package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"formatted br mobile", "(11) 98765-4321", "11987654321", true},
		{"international", "+55 11 3333-4444", "551133334444", true},
		{"exactly eight digits", "3333-4444", "33334444", true},
		{"seven digits", "333-4444", "", false},
		{"all zeros placeholder", "00000000", "", false},
		{"repeated digit placeholder", "(99) 99999-9999", "", false},
		{"sentinel pt", "Não encontrado", "", false},
		{"sentinel pt no accent", "nao encontrado", "", false},
		{"sentinel en mixed case", "  Not Found ", "", false},
		{"sentinel n/a", "N/A", "", false},
		{"empty", "", "", false},
		{"letters only", "call us", "", false},
		{"unicode noise", "☎ 11 9 8765 4321", "11987654321", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_NeverAddsCountryCode(t *testing.T) {
	t.Parallel()

	got, ok := Normalize("11987654321")
	assert.True(t, ok)
	assert.Equal(t, "11987654321", got)
}

func TestIsMobile(t *testing.T) {
	t.Parallel()

	assert.True(t, IsMobile("11987654321"))
	assert.True(t, IsMobile("5511987654321"))
	assert.False(t, IsMobile("1133334444"))
	assert.False(t, IsMobile("11387654321"))
	assert.False(t, IsMobile("4411987654321"))
	assert.False(t, IsMobile("33334444"))
}

func TestRegionDial(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5511987654321", Brazil.Dial("11987654321"))
	assert.Equal(t, "551133334444", Brazil.Dial("1133334444"))
	assert.Equal(t, "5511987654321", Brazil.Dial("5511987654321"))
	assert.Equal(t, "33334444", Brazil.Dial("33334444"))
	assert.Equal(t, "11987654321", NoRegion.Dial("11987654321"))

	us := Region{CountryCode: "1", LocalLengths: []int{10}}
	assert.Equal(t, "12125551234", us.Dial("2125551234"))
}

func TestWhatsAppLink(t *testing.T) {
	t.Parallel()

	link := Brazil.WhatsAppLink("(11) 98765-4321", "Olá Padaria")
	assert.Equal(t, "https://wa.me/5511987654321?text=Ol%C3%A1+Padaria", link)

	assert.Equal(t, "https://wa.me/11987654321", NoRegion.WhatsAppLink("11987654321", ""))
	assert.Empty(t, Brazil.WhatsAppLink("Não encontrado", "hi"))
}
