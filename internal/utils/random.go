package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ConfirmationCodeLength is the length of the codes mailed at signup.
const ConfirmationCodeLength = 8

// GenerateRandomString returns length characters drawn uniformly from codeChars.
func GenerateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be a positive integer")
	}
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		val, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		b[i] = codeChars[val.Int64()]
	}
	return string(b), nil
}

func GenerateConfirmationCode() (string, error) {
	return GenerateRandomString(ConfirmationCodeLength)
}
