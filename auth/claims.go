package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claims structure for datacat sessions. It embeds
// jwt.RegisteredClaims for the standard fields (exp, iat) and adds the
// identity fields the admin API needs.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
}
