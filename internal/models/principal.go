package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Principal is an identity held by the session store: credentials plus
// the username/role metadata attached at sign-up. A Principal row is
// distinct from the User profile row keyed by the same id; the two are
// created as a pair by the provisioning flow but not atomically.
type Principal struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Username     string `gorm:"size:100" json:"username"`
	Role         Role   `gorm:"size:20" json:"role"`
}

// SetPassword hashes a password and sets it on the principal
func (p *Principal) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the principal's hashed password
func (p *Principal) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password))
	return err == nil
}
