// Package password hashes and verifies principal passwords.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeCharset is used for registration codes.
	CodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// ResetCharset is used for administrator password resets.
	ResetCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Cost is the bcrypt work factor. Tests lower it to bcrypt.MinCost.
var Cost = bcrypt.DefaultCost

// Hash returns a salted bcrypt hash of plain. Every call draws a fresh salt,
// so hashing the same password twice yields different values.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored bcrypt hash.
func Verify(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(plain)) == nil
}

// prehash folds plain into 44 bytes so bcrypt never sees more than its
// 72-byte input limit and every byte of the password counts.
func prehash(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// Generate returns a crypto-random string of length n drawn from charset.
func Generate(n int, charset string) (string, error) {
	if n <= 0 || charset == "" {
		return "", errors.New("password: invalid length or charset")
	}
	max := big.NewInt(int64(len(charset)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}
