package token

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestGenerate(t *testing.T) {
	tok, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("Generate() returned invalid base64: %v", err)
	}
	if len(decoded) != DefaultLength {
		t.Errorf("Generate() decoded length = %d, want %d", len(decoded), DefaultLength)
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{"8 bytes", 8},
		{"16 bytes", 16},
		{"32 bytes", 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Hex(tt.length)
			if err != nil {
				t.Fatalf("Hex() error = %v", err)
			}
			if len(s) != tt.length*2 {
				t.Errorf("Hex() length = %d, want %d", len(s), tt.length*2)
			}
			if _, err := hex.DecodeString(s); err != nil {
				t.Errorf("Hex() returned invalid hex: %v", err)
			}
		})
	}
}

func TestHex_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s := MustHex(16)
		if seen[s] {
			t.Fatalf("MustHex() produced duplicate value: %s", s)
		}
		seen[s] = true
	}
}
