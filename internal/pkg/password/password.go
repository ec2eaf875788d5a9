package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted bcrypt hash suitable for storage. Hashing the same
// password twice yields different strings; only Compare can check a match.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports via error whether plain matches the stored hash.
func Compare(hash string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
