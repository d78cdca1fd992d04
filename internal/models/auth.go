package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload of session tokens issued after OTP verification.
// ProfileID is empty until the account registers a profile.
type JWTClaims struct {
	Email     string `json:"email"`
	ProfileID string `json:"profile_id,omitempty"`
	jwt.RegisteredClaims
}

// OTPRecord is the pending verification code for an email.
type OTPRecord struct {
	Hash      string    `json:"hash"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is returned after a successful code verification.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Email       string    `json:"email"`
	Registered  bool      `json:"registered"`
}
