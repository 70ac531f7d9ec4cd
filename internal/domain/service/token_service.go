package service

import "time"

// ClaimExpiration is the reserved claim holding the expiry in epoch seconds.
const ClaimExpiration = "exp"

// ClaimSubject identifies the principal a token was issued to.
const ClaimSubject = "sub"

// Claims is the payload carried by a signed token.
type Claims map[string]any

// Clone returns a shallow copy of c.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c)+1)
	for k, v := range c {
		out[k] = v
	}

	return out
}

// Subject returns the "sub" claim when it is a string.
func (c Claims) Subject() (string, bool) {
	sub, ok := c[ClaimSubject].(string)
	return sub, ok
}

// TokenService defines the interface for encoding and decoding signed tokens.
type TokenService interface {
	// Encode signs a copy of claims with "exp" set to now plus expireHours.
	// Negative hours produce an already expired token. claims is not modified.
	Encode(claims Claims, expireHours int) (string, error)

	// Decode verifies signature and expiry and returns the claims. Failures
	// match ErrDecodeToken, ErrExpiredToken or ErrInvalidToken.
	Decode(token string) (Claims, error)

	// TokenType is the scheme clients send the token under, e.g. "bearer".
	TokenType() string

	// Lifetime is the configured default token lifetime.
	Lifetime() time.Duration
}
