package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/myokr/okr-api/internal/constants"
)

// GenerateInviteToken returns a hex encoded token carrying 256 bits of entropy.
func GenerateInviteToken() (string, error) {
	bytes := make([]byte, constants.InviteTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateOTP returns a zero-padded numeric code of constants.OTPLength digits.
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < constants.OTPLength; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", constants.OTPLength, n.Int64()), nil
}
