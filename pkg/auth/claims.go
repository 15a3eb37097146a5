package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenClaims is the slice of the identity collaborator's token the
// cart gateway cares about. The registered Subject claim is the identity key.
type AccessTokenClaims struct {
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IdentityKey returns the stable key distinguishing the authenticated
// principal, or nil when the claims carry no subject.
func (c *AccessTokenClaims) IdentityKey() *string {
	if c == nil || c.Subject == "" {
		return nil
	}
	key := c.Subject
	return &key
}

// AccessTokenPayload is what dev tooling and tests mint tokens from.
type AccessTokenPayload struct {
	Subject     string
	DisplayName string
	JTI         string
}
