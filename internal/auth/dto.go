package auth

import (
	"github.com/neonshoplabs/neonshop-backend/internal/users"
)

// RegisterInput is the storefront sign-up payload.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// LoginInput is the credentials payload. GuestToken, when present, triggers
// the guest cart reconciliation after a successful login.
type LoginInput struct {
	Email      string
	Password   string
	GuestToken string
}

// TokenPairDTO carries a freshly minted access/refresh pair.
type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResultDTO is the full login response. MergedCartItems reports how many
// guest cart lines were pushed into the user's cart.
type LoginResultDTO struct {
	User            users.UserDTO `json:"user"`
	AccessToken     string        `json:"access_token"`
	RefreshToken    string        `json:"refresh_token"`
	MergedCartItems int           `json:"merged_cart_items"`
}
