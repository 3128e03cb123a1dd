package models

import (
	"time"
)

// Session represents an open session for a principal, keyed by its
// refresh token. Signing a principal out revokes every active session
// row, which is the side effect every route guard observes.
type Session struct {
	BaseModel
	PrincipalID string    `gorm:"size:36;index" json:"principalId"`
	Token       string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
	IsRevoked   bool      `gorm:"default:false" json:"isRevoked"`

	Principal Principal `gorm:"foreignKey:PrincipalID" json:"-"`
}
