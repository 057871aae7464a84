// Package credential provides one-way hashing and verification of plain PINs.
package credential

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "pinauth/pkg/domain-errors"
)

// MaxPlainLength bounds input to bcrypt's own 72-byte limit. Rejecting longer
// input up front prevents resource exhaustion via oversized payloads fed into
// a deliberately slow function.
const MaxPlainLength = 72

// Hasher hashes and verifies plain PINs using bcrypt. The output string is
// self-describing (algorithm id, cost, and salt are embedded), so verification
// needs no side-channel configuration lookup.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the given bcrypt cost. Costs outside
// bcrypt's valid range fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash creates a salted bcrypt hash of the plain PIN. Repeated calls with the
// same input produce different outputs; all of them verify.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "pin cannot be empty")
	}
	if len(plain) > MaxPlainLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "pin is too long")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "pin is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash pin")
	}
	return string(hashed), nil
}

// Verify reports whether the plain PIN matches the stored hash. Malformed
// stored hashes never cause an error, only a false result; bcrypt's comparison
// is constant time with respect to the secret content.
func (h *Hasher) Verify(plain, hashed string) bool {
	if plain == "" || hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
