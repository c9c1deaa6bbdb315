package utils

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// GenerateReferralCode creates a random 8-character uppercase referral code
func GenerateReferralCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b), nil
}
