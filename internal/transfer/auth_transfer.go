package transfer

import "github.com/golang-jwt/jwt/v5"

// CustomClaims are the claims carried by dashboard session tokens.
type CustomClaims struct {
	Subject string `json:"sub_name"`
	jwt.RegisteredClaims
}

// TokenRequest exchanges the admin secret for a session token.
type TokenRequest struct {
	Secret string `json:"secret"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Token string `json:"token"`
}
