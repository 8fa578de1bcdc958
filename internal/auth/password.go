package auth

import (
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// Enforced by Service.Register before hashing. The minimum counts UTF-16 code
// units, the way browser clients measure input length. The maximum is bcrypt's
// input limit in bytes.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

func passwordLength(plain string) int {
	return len(utf16.Encode([]rune(plain)))
}

// PasswordHasher wraps bcrypt with a fixed cost.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("applytrackr-missing-user"), cost)
	if err != nil {
		return nil, err
	}

	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *PasswordHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyMissing spends the same work as Verify for an account that does not
// exist, so login latency does not reveal whether an email is registered.
func (h *PasswordHasher) VerifyMissing(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
