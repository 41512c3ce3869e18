package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"ticketdesk/internal/models"

	"golang.org/x/crypto/pbkdf2"
)

const (
	MinPasswordLength = 6

	hashIterations = 10000
	hashKeyLength  = 64
	saltLength     = 16
)

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// HashPassword derives the stored digest for raw under salt. The salt is used
// in its encoded form, so the same pair always yields the same digest.
func HashPassword(raw, salt string) string {
	key := pbkdf2.Key([]byte(raw), []byte(salt), hashIterations, hashKeyLength, sha512.New)
	return base64.StdEncoding.EncodeToString(key)
}

// SetPassword stores a fresh salt and digest on user. A short password leaves
// user untouched.
func SetPassword(user *models.User, raw string) error {
	if user == nil {
		return errors.New("nil user")
	}
	if utf8.RuneCountInString(raw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	salt, err := newSalt()
	if err != nil {
		return err
	}
	user.Salt = salt
	user.HashedPassword = HashPassword(raw, salt)
	return nil
}

func Authenticate(user models.User, raw string) bool {
	if user.Salt == "" || user.HashedPassword == "" {
		return false
	}
	digest := HashPassword(raw, user.Salt)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(user.HashedPassword)) == 1
}

func newSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
