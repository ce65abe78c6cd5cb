// Package security holds the bcrypt verification of the admin API token.
package security

import "golang.org/x/crypto/bcrypt"

// TokenHasher hashes and verifies bearer tokens. The zero value uses
// the default bcrypt cost.
type TokenHasher struct {
	Cost int
}

// Hash produces the bcrypt digest stored in ADMIN_TOKEN_HASH.
func (h TokenHasher) Hash(token string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(token), h.cost())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare reports whether the presented token matches the stored hash.
func (h TokenHasher) Compare(hash, token string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
}

func (h TokenHasher) cost() int {
	if h.Cost >= bcrypt.MinCost {
		return h.Cost
	}
	return bcrypt.DefaultCost
}
