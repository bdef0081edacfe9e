// Package password implements the credential codec: deriving salted bcrypt
// hashes from plaintext passwords and verifying candidates against them.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// saltBytes is the number of random bytes in a generated salt (hex-encoded
// to twice that length). The salt is stored next to the hash and mixed into
// the digested input on every verification.
const saltBytes = 16

// Codec derives and verifies salted bcrypt password hashes.
// Construct with NewCodec; the zero value has an invalid cost.
type Codec struct {
	cost int
}

func NewCodec(cost int) (*Codec, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Codec{cost: cost}, nil
}

// saltedInput folds the salt and plaintext into a fixed-width hex digest.
// bcrypt only reads the first 72 bytes of its input; hashing first keeps
// every byte of an arbitrarily long password significant, and the hex
// encoding keeps NUL bytes out of the bcrypt input.
func saltedInput(plaintext, salt string) []byte {
	sum := sha256.Sum256([]byte(salt + plaintext))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}

// Hash generates a fresh random salt and derives the bcrypt digest of the
// salted plaintext. Both the salt and the encoded hash must be persisted.
func (c *Codec) Hash(plaintext string) (salt string, hash string, err error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generating salt: %w", err)
	}
	salt = hex.EncodeToString(b)

	digest, err := bcrypt.GenerateFromPassword(saltedInput(plaintext, salt), c.cost)
	if err != nil {
		return "", "", fmt.Errorf("hashing password: %w", err)
	}

	return salt, string(digest), nil
}

// Verify reports whether plaintext matches the stored salt+hash pair.
// A malformed stored hash counts as a mismatch, never a panic or an error.
// bcrypt's comparison does not leak where a mismatch occurs.
func (c *Codec) Verify(plaintext, salt, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), saltedInput(plaintext, salt)) == nil
}
