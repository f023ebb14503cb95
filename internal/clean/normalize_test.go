package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Ville de Paris", "VILLE DE PARIS"},
		{"legal suffix", "Acme Corporation", "ACME"},
		{"dotted suffix", "Stavby Brno s.r.o.", "STAVBY BRNO"},
		{"french sa", "Constructions Durand S.A.", "CONSTRUCTIONS DURAND"},
		{"ampersand", "Dupont & Fils", "DUPONT AND FILS"},
		{"punctuation and dashes", "Saint-Denis, Comm. d'Agglo.", "SAINT DENIS COMM DAGGLO"},
		{"collapsed spaces", "  Mairie   de  Lyon ", "MAIRIE DE LYON"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNormalizeNameIsIdempotent(t *testing.T) {
	names := []string{"Acme Corp.", "Dupont & Fils", "Stavby Brno s.r.o."}
	for _, n := range names {
		once := NormalizeName(n)
		assert.Equal(t, once, NormalizeName(once), n)
	}
}

func TestNormalizeLegalID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123-456/78", "12345678"},
		{"123 456 78", "12345678"},
		{"cz.123.45", "CZ12345"},
		{" 500 123 456 ", "500123456"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLegalID(tt.in), tt.in)
	}
}
