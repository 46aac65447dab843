// Package password provides the slow one-way hashing primitive shared by
// credential storage and quotation access codes. Comparison is performed by
// bcrypt itself and is constant-time with respect to the plaintext.
package password

import "golang.org/x/crypto/bcrypt"

// DefaultCost is used when a caller supplies a cost outside bcrypt's range.
const DefaultCost = bcrypt.DefaultCost

// Hash returns the bcrypt hash of plain using the given cost.
func Hash(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches the bcrypt hash.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
