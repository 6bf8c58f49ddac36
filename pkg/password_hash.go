package pkg

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// HashPassword returns the bcrypt hash of the given password. The salt and
// cost factor are embedded in the returned string, so verification needs
// nothing besides the hash itself.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return BytesToString(bytes), err
}

// CheckPasswordHash returns true only when password matches hash. Malformed
// hashes simply yield false, never an error.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
