package types

import "time"

// TokenRequest exchanges an API key for a bearer token.
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required,min=8"`
}

// Validate checks required fields.
func (r *TokenRequest) Validate() error {
	return validateStruct(r)
}

// TokenResponse carries a signed bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
