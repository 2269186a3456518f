package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
)

// OTP helpers

const otpDigits = 6

var otpSpace = big.NewInt(1_000_000)

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// HashOTP returns "salt:hash" for code so the plain code never reaches the store.
func HashOTP(code string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	return saltStr + ":" + otpDigest(saltStr, code), nil
}

// CompareOTP checks code against a value produced by HashOTP in constant time.
func CompareOTP(stored, code string) bool {
	saltStr, expected, ok := strings.Cut(stored, ":")
	if !ok || saltStr == "" || expected == "" {
		return false
	}
	got := otpDigest(saltStr, code)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// IsOTPFormat reports whether code looks like a code GenOTPCode could produce.
func IsOTPFormat(code string) bool {
	if len(code) != otpDigits {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func otpDigest(salt, code string) string {
	sum := sha256.Sum256([]byte(salt + ":" + code))
	return base64.StdEncoding.EncodeToString(sum[:])
}
