package utils

import "testing"

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateReferralCode()
		if err != nil {
			t.Fatalf("GenerateReferralCode failed: %v", err)
		}
		if len(code) != 8 {
			t.Errorf("expected 8 characters, got %q", code)
		}
		if seen[code] {
			t.Errorf("duplicate code %q in 100 draws", code)
		}
		seen[code] = true
	}
}
