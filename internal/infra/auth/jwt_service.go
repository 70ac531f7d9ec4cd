package auth

import (
	"time"

	"projectbasis/config"
	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/service"
	"projectbasis/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

var errUnexpectedAlgorithm = errors.New("unexpected signing algorithm")

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret    []byte                 // HMAC key for signing and verification.
	method    *jwt.SigningMethodHMAC // The single accepted signing algorithm.
	tokenType string                 // Scheme reported to clients, e.g. "bearer".
	lifetime  time.Duration          // Default lifetime for issued tokens.
	now       func() time.Time
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.Auth == nil {
		return nil, errors.New("auth config must be provided")
	}

	svc, err := newJWTService(cfg.Auth.SecretKey, cfg.Auth.TokenAlgorithm)
	if err != nil {
		return nil, err
	}
	svc.tokenType = cfg.Auth.TokenType
	svc.lifetime = time.Duration(cfg.Auth.TokenExpires) * time.Hour

	return svc, nil
}

// NewJWTServiceWithSecret builds a token service from a bare secret and
// algorithm name, with a one hour default lifetime.
func NewJWTServiceWithSecret(secret, algorithm string) (service.TokenService, error) {
	return newJWTService(secret, algorithm)
}

func newJWTService(secret, algorithm string) (*jwtService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, errors.Errorf("unsupported token algorithm %q: only HMAC algorithms are accepted", algorithm)
	}

	return &jwtService{
		secret:    []byte(secret),
		method:    method,
		tokenType: "bearer",
		lifetime:  time.Hour,
		now:       time.Now,
	}, nil
}

// Encode signs a copy of claims with the expiry set expireHours from now.
func (s *jwtService) Encode(claims service.Claims, expireHours int) (string, error) {
	payload := jwt.MapClaims(claims.Clone())
	payload[service.ClaimExpiration] = s.now().Add(time.Duration(expireHours) * time.Hour).Unix()

	token := jwt.NewWithClaims(s.method, payload)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return signed, nil
}

// Decode verifies a token and sorts every failure into one of three kinds:
// unreadable or wrongly signed, expired, or otherwise invalid.
func (s *jwtService) Decode(tokenString string) (service.Claims, error) {
	claims := jwt.MapClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	return service.Claims(claims), nil
}

// TokenType returns the configured token scheme.
func (s *jwtService) TokenType() string {
	return s.tokenType
}

// Lifetime returns the configured default token lifetime.
func (s *jwtService) Lifetime() time.Duration {
	return s.lifetime
}

// keyFunc pins verification to the configured algorithm.
func (s *jwtService) keyFunc(token *jwt.Token) (any, error) {
	if token.Method == nil || token.Method.Alg() != s.method.Alg() {
		return nil, errUnexpectedAlgorithm
	}

	return s.secret, nil
}

// classifyTokenError maps golang-jwt errors onto the token error taxonomy.
// Expiry is only reported by the parser after the signature has verified.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domainerrors.ErrExpiredToken.WrapMessage(err.Error())
	case errors.IsAny(err, jwt.ErrTokenMalformed, jwt.ErrTokenSignatureInvalid):
		return domainerrors.ErrDecodeToken.WrapMessage(err.Error())
	default:
		return domainerrors.ErrInvalidToken.WrapMessage(err.Error())
	}
}
